// Package app wires the game runtime and HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bergenthala/ai-class-generator/internal/forge/archetype"
	"github.com/bergenthala/ai-class-generator/internal/game/api"
	gamesqlite "github.com/bergenthala/ai-class-generator/internal/game/storage/sqlite"
	"github.com/bergenthala/ai-class-generator/internal/platform/config"
	"github.com/bergenthala/ai-class-generator/internal/story"
	"github.com/bergenthala/ai-class-generator/internal/unlock"
)

type serverEnv struct {
	HTTPAddr      string `env:"CLASSGEN_HTTP_ADDR"`
	DBPath        string `env:"CLASSGEN_DB_PATH"`
	CatalogPath   string `env:"CLASSGEN_CATALOG_PATH"`
	RulesPath     string `env:"CLASSGEN_RULES_PATH"`
	StoryEndpoint string `env:"CLASSGEN_STORY_ENDPOINT"`
	StoryToken    string `env:"CLASSGEN_STORY_TOKEN"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		cfg.HTTPAddr = ":8080"
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "game.db")
	}
	return cfg
}

// Server hosts the game HTTP API and storage lifecycle.
type Server struct {
	listener net.Listener
	httpSrv  *http.Server
	store    *gamesqlite.Store
}

// New creates a configured game server from environment configuration.
func New() (*Server, error) {
	env := loadServerEnv()
	return NewWithAddr(env.HTTPAddr)
}

// NewWithAddr creates a configured game server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := openGameStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	catalog, err := loadCatalog(env.CatalogPath)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	seedRules, err := loadSeedRules(env.RulesPath)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	storySvc := story.New(env.StoryEndpoint, env.StoryToken, nil)
	apiServer := api.NewServer(store, catalog, storySvc, seedRules)

	return &Server{
		listener: listener,
		httpSrv: &http.Server{
			Handler:           apiServer.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		store: store,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a game server until context cancellation.
func Run(ctx context.Context) error {
	server, err := New()
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("game server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpSrv.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases game server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpSrv != nil {
		_ = s.httpSrv.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close game store: %v", err)
		}
	}
}

func openGameStore(path string) (*gamesqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := gamesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open game sqlite store: %w", err)
	}
	return store, nil
}

func loadCatalog(path string) (*archetype.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return archetype.Builtin(), nil
	}
	catalog, err := archetype.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load archetype catalog: %w", err)
	}
	return catalog, nil
}

func loadSeedRules(path string) ([]unlock.Rule, error) {
	if strings.TrimSpace(path) == "" {
		return unlock.BuiltinRules(), nil
	}
	rules, err := unlock.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load unlock rules: %w", err)
	}
	return rules, nil
}
