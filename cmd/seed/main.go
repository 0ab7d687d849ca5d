// Command seed loads an event catalog (and optional demo postings) from a
// YAML file into the database.  It is meant for local development and for
// bootstrapping a fresh deployment with the season's events.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ajbgithub/ticketmatch2-sub000/internal/config"
	"github.com/ajbgithub/ticketmatch2-sub000/internal/database"
	"github.com/ajbgithub/ticketmatch2-sub000/internal/model"
	"github.com/ajbgithub/ticketmatch2-sub000/internal/repository"
)

// catalogFile mirrors the YAML layout: a list of events, optionally followed
// by demo postings that reference events by label.
type catalogFile struct {
	Events   []catalogEvent   `yaml:"events"`
	Postings []catalogPosting `yaml:"postings"`
}

type catalogEvent struct {
	Label          string  `yaml:"label"`
	Type           string  `yaml:"type"`
	FaceValueCents *uint32 `yaml:"face_value_cents"`
}

type catalogPosting struct {
	UserID      uint64  `yaml:"user_id"`
	Event       string  `yaml:"event"`
	Side        string  `yaml:"side"`
	Percent     *uint8  `yaml:"percent"`
	PriceCents  *uint32 `yaml:"price_cents"`
	Description string  `yaml:"description"`
	Tickets     uint32  `yaml:"tickets"`
	DisplayName string  `yaml:"display_name"`
	Phone       string  `yaml:"phone"`
	Email       string  `yaml:"email"`
}

var seedFile string

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load events and demo postings from a YAML catalog",
	Long:  `seed reads a YAML catalog of events (and optional demo postings) and inserts them through the same repositories the server uses.`,
	RunE:  runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&seedFile, "file", "f", "seed.yaml", "Path to the YAML catalog")
}

func runSeed(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var cat catalogFile
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat.Events) == 0 {
		return fmt.Errorf("catalog %s contains no events", seedFile)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	events := repository.NewEventRepo(db)
	postings := repository.NewPostingRepo(db)
	trades := repository.NewTradeRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := trades.EnsureLedgerRow(ctx); err != nil {
		return fmt.Errorf("trade ledger: %w", err)
	}

	// Insert events first and remember their ids so postings can reference
	// them by label.
	byLabel := map[string]model.Event{}
	for _, ce := range cat.Events {
		et := model.EventType(ce.Type)
		if !et.Valid() {
			return fmt.Errorf("event %q: unknown type %q", ce.Label, ce.Type)
		}
		if et == model.EventPercent && ce.FaceValueCents == nil {
			return fmt.Errorf("event %q: PERCENT events need face_value_cents", ce.Label)
		}
		if et == model.EventMarket && ce.FaceValueCents != nil {
			return fmt.Errorf("event %q: MARKET events must not set face_value_cents", ce.Label)
		}
		ev := model.Event{Label: ce.Label, Type: et, FaceValueCents: ce.FaceValueCents}
		if err := events.Create(ctx, &ev); err != nil {
			return fmt.Errorf("event %q: %w", ce.Label, err)
		}
		byLabel[ev.Label] = ev
		fmt.Printf("event %d: %s (%s)\n", ev.ID, ev.Label, ev.Type)
	}

	for _, cp := range cat.Postings {
		ev, ok := byLabel[cp.Event]
		if !ok {
			return fmt.Errorf("posting for user %d: unknown event %q", cp.UserID, cp.Event)
		}
		side := model.Side(cp.Side)
		if !side.Valid() {
			return fmt.Errorf("posting for user %d: unknown side %q", cp.UserID, cp.Side)
		}
		tickets := cp.Tickets
		if tickets == 0 {
			tickets = 1
		}
		p := model.Posting{
			UserID:      cp.UserID,
			EventID:     ev.ID,
			Side:        side,
			Percent:     cp.Percent,
			PriceCents:  cp.PriceCents,
			Description: cp.Description,
			Tickets:     tickets,
			DisplayName: cp.DisplayName,
			Phone:       cp.Phone,
			Email:       cp.Email,
		}
		id, replaced, err := postings.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("posting for user %d on %q: %w", cp.UserID, cp.Event, err)
		}
		verb := "created"
		if replaced {
			verb = "replaced"
		}
		fmt.Printf("posting %d: user %d %s on %q (%s)\n", id, cp.UserID, side, cp.Event, verb)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
