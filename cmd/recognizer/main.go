package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/torvik/intent-cascade/internal/config"
	"github.com/torvik/intent-cascade/internal/domain"
	"github.com/torvik/intent-cascade/internal/service"
	"github.com/torvik/intent-cascade/internal/service/hybrid"
	"github.com/torvik/intent-cascade/internal/service/params"
	"github.com/torvik/intent-cascade/internal/service/rulebased"
	"github.com/torvik/intent-cascade/internal/util"
	"go.uber.org/zap"
)

func main() {
	donationsPath := flag.String("donations", os.Getenv("DONATIONS_PATH"), "path to keyword donations JSON")
	sessionID := flag.String("session", "cli", "session id for this run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	donations, err := loadDonations(*donationsPath)
	if err != nil {
		logger.Fatal("Failed to load donations", zap.String("path", *donationsPath), zap.Error(err))
	}
	logger.Info("Donations loaded", zap.String("path", *donationsPath), zap.Int("count", len(donations)))

	extractor := params.NewExtractor(logger)

	// A recognizer that fails to initialize is logged and excluded; the
	// cascade runs with whatever remains.
	recognizers := make(map[string]service.Recognizer)
	if matcher, err := hybrid.NewMatcher(cfg.Hybrid, donations, extractor, logger); err != nil {
		logger.Warn("Hybrid matcher unavailable", zap.Error(err))
	} else {
		recognizers[hybrid.ProviderName] = matcher
	}
	recognizers[rulebased.ProviderName] = rulebased.NewRecognizer(cfg.RuleBased, extractor, logger)

	coordinator := service.NewCascadeCoordinator(cfg.Cascade, recognizers, logger)
	logger.Info("Recognizer ready", zap.Strings("cascade", coordinator.ActiveRecognizers()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runLoop(ctx, coordinator, *sessionID, logger)
	logger.Info("Recognizer shutting down")
}

// loadDonations reads a JSON array of keyword donations, the output of an
// external skill loader.
func loadDonations(path string) ([]domain.KeywordDonation, error) {
	if path == "" {
		return nil, fmt.Errorf("donations path not set (flag -donations or DONATIONS_PATH)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var donations []domain.KeywordDonation
	if err := json.Unmarshal(data, &donations); err != nil {
		return nil, fmt.Errorf("parse donations: %w", err)
	}
	return donations, nil
}

// runLoop reads one query per line from stdin and prints the recognized
// intent as a JSON line.
func runLoop(ctx context.Context, coordinator *service.CascadeCoordinator, sessionID string, logger *zap.Logger) {
	convCtx := &domain.ConversationContext{SessionID: sessionID, ClientID: "cli"}
	scanner := bufio.NewScanner(os.Stdin)
	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		intent := coordinator.Recognize(ctx, text, convCtx)
		if err := encoder.Encode(intent); err != nil {
			logger.Error("Failed to encode intent", zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Input read failed", zap.Error(err))
	}
}
