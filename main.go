package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/assets"
	"github.com/robalobadob/wordscramble/internal/config"
	"github.com/robalobadob/wordscramble/internal/dictionary"
	"github.com/robalobadob/wordscramble/internal/httpserver"
	"github.com/robalobadob/wordscramble/internal/store"
	"github.com/robalobadob/wordscramble/internal/words"
)

// errNoDictionary means no word list exists for the configured language.
var errNoDictionary = errors.New("no dictionary for language")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	lang, err := dictionary.ParseLanguage(cfg.Language)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game language")
	}

	provider, poolSize, err := buildProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load start words")
	}

	oracle, closeOracle, err := buildOracle(context.Background(), cfg, lang)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}
	defer closeOracle()

	mem := store.NewMemoryStore(cfg.SessionTTL)
	defer mem.Close()

	srv := httpserver.New(mem, httpserver.Options{
		Provider:     provider,
		Oracle:       dictionary.WithTimeout(oracle, cfg.DictionaryTimeout),
		Language:     lang,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL(),
		ClientOrigin: cfg.ClientOrigin,
		PoolSize:     poolSize,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("mode", cfg.RootWordMode).Str("language", lang.String()).Msg("starting wordscramble server")
		if err := srv.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// buildProvider loads the root word pool and wraps it for the configured mode.
func buildProvider(cfg *config.Config) (words.Provider, int, error) {
	var (
		list *words.List
		err  error
	)
	if cfg.StartWordsFile != "" {
		list, err = words.Load(cfg.StartWordsFile)
	} else {
		list, err = words.Embedded()
	}
	if err != nil {
		return nil, 0, err
	}
	if list.Len() == 0 {
		return nil, 0, words.ErrEmptyPool
	}
	if cfg.RootWordMode == config.ModeDaily {
		return words.NewDaily(list, cfg.DailySalt, time.Now), list.Len(), nil
	}
	return list, list.Len(), nil
}

// buildOracle returns the dictionary backend plus a func releasing it.
// DICTIONARY_DB selects the SQLite backend; otherwise words are held in memory.
func buildOracle(ctx context.Context, cfg *config.Config, lang language.Tag) (dictionary.Oracle, func(), error) {
	if cfg.DictionaryDB == "" {
		set, err := buildSet(cfg, lang)
		return set, func() {}, err
	}

	db, err := dictionary.OpenDB(cfg.DictionaryDB)
	if err != nil {
		return nil, nil, err
	}
	release := func() { _ = db.Close() }
	if err := dictionary.Migrate(db); err != nil {
		release()
		return nil, nil, err
	}
	sq := dictionary.NewSQLite(db)
	if err := seedSQLite(ctx, sq, cfg, lang); err != nil {
		release()
		return nil, nil, err
	}
	return sq, release, nil
}

func buildSet(cfg *config.Config, lang language.Tag) (*dictionary.Set, error) {
	if cfg.DictionaryFile == "" {
		if !dictionary.HasEmbedded(lang) {
			return nil, fmt.Errorf("%w %s: set DICTIONARY_FILE", errNoDictionary, lang)
		}
		return dictionary.EmbeddedEnglish()
	}
	set := dictionary.NewSet()
	if err := set.LoadFile(lang, cfg.DictionaryFile); err != nil {
		return nil, err
	}
	log.Info().Str("file", cfg.DictionaryFile).Int("words", set.Len(lang)).Msg("dictionary loaded")
	return set, nil
}

// seedSQLite imports the word list into a database holding no words for lang.
// The embedded list is only used for English.
func seedSQLite(ctx context.Context, sq *dictionary.SQLite, cfg *config.Config, lang language.Tag) error {
	n, err := sq.Count(ctx, lang)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Int("words", n).Msg("dictionary database ready")
		return nil
	}

	source := "embedded:dictionary_en.txt"
	var ws []string
	if cfg.DictionaryFile != "" {
		source = cfg.DictionaryFile
		ws, err = readWordFile(cfg.DictionaryFile)
	} else if dictionary.HasEmbedded(lang) {
		ws, err = assets.EnglishDictionary()
	} else {
		return fmt.Errorf("%w %s: set DICTIONARY_FILE to seed %s", errNoDictionary, lang, cfg.DictionaryDB)
	}
	if err != nil {
		return err
	}
	added, err := sq.Import(ctx, lang, source, ws)
	if err != nil {
		return err
	}
	log.Info().Str("source", source).Int("words", added).Msg("dictionary database seeded")
	return nil
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary file: %w", err)
	}
	defer f.Close()
	return assets.ReadLines(f)
}
