package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupPostgres connects to the database named by TEST_DATABASE_URL and
// returns a store with a clean price_history table. Tests are skipped
// when no database is configured.
func setupPostgres(t *testing.T) *Postgres {
	t.Helper()

	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	s := NewPostgres(pool, nil)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE price_history`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func TestPostgresRoundTrip(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Second)

	for i, price := range []float64{100, 110, 90} {
		obs := obsAt(btcusd, price, t0.Add(time.Duration(i)*time.Minute))
		if err := s.Append(ctx, obs); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}

	series, err := s.ReadSeries(ctx, btcusd, t0)
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("len(series) = %d, want 3", len(series))
	}
	if series[0].Price != 100 || series[2].Price != 90 {
		t.Errorf("series prices = %v", series)
	}

	latest, err := s.Latest(ctx, btcusd)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Price != 90 {
		t.Errorf("Latest.Price = %g, want 90", latest.Price)
	}
}

func TestPostgresRejectsOutOfOrder(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Second)

	if err := s.Append(ctx, obsAt(btcusd, 100, t0)); err != nil {
		t.Fatal(err)
	}

	err := s.Append(ctx, obsAt(btcusd, 101, t0.Add(-time.Minute)))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}

	latest, err := s.Latest(ctx, btcusd)
	if err != nil {
		t.Fatal(err)
	}
	if latest.Price != 100 {
		t.Errorf("Latest.Price = %g, want 100", latest.Price)
	}
}

func TestPostgresPrune(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Second).Add(-10 * time.Hour)

	for i := 0; i < 10; i++ {
		if err := s.Append(ctx, obsAt(btcusd, 100+float64(i), t0.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.Prune(ctx, t0.Add(5*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 5 {
		t.Errorf("removed = %d, want 5", removed)
	}

	series, err := s.ReadSeries(ctx, btcusd, time.Time{}.Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 5 {
		t.Errorf("len(series) = %d, want 5", len(series))
	}
}
