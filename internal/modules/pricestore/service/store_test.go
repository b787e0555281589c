package service

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func candleAt(t time.Time, close float64) models.Candle {
	return models.Candle{Open: close, High: close, Low: close, Close: close, Volume: 1, CloseTime: t}
}

func TestUpdateReturnsSnapshotCopy(t *testing.T) {
	s := NewStore()
	s.Init("BTCUSDT", "60", 10)

	base := time.Unix(1_700_000_000, 0)
	snap, err := s.Update("BTCUSDT", "60", candleAt(base, 100))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("snapshot len = %d, want 1", len(snap))
	}

	// мутация снапшота не должна трогать окно
	snap[0].Close = -1
	again := s.Snapshot("BTCUSDT")
	if again[0].Close != 100 {
		t.Fatalf("window mutated through snapshot: close = %v", again[0].Close)
	}
}

func TestUpdateEvictsOldest(t *testing.T) {
	s := NewStore()
	s.Init("ETHUSDT", "60", 3)

	base := time.Unix(1_700_000_000, 0)
	for i := 0; i < 5; i++ {
		if _, err := s.Update("ETHUSDT", "60", candleAt(base.Add(time.Duration(i)*time.Hour), float64(i))); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	snap := s.Snapshot("ETHUSDT")
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	if snap[0].Close != 2 || snap[2].Close != 4 {
		t.Fatalf("wrong eviction order: first=%v last=%v", snap[0].Close, snap[2].Close)
	}
}

func TestUpdateDuplicateIsNoop(t *testing.T) {
	s := NewStore()
	base := time.Unix(1_700_000_000, 0)

	if _, err := s.Update("BTCUSDT", "60", candleAt(base, 100)); err != nil {
		t.Fatalf("first update: %v", err)
	}
	snap, err := s.Update("BTCUSDT", "60", candleAt(base, 999)) // тот же close_time
	if err != nil {
		t.Fatalf("duplicate update: %v", err)
	}
	if len(snap) != 1 || snap[0].Close != 100 {
		t.Fatalf("duplicate was not ignored: %+v", snap)
	}

	// свеча из прошлого тоже игнорируется
	snap, err = s.Update("BTCUSDT", "60", candleAt(base.Add(-time.Hour), 1))
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("stale candle appended: len = %d", len(snap))
	}
}

func TestUpdateIntervalMismatch(t *testing.T) {
	s := NewStore()
	base := time.Unix(1_700_000_000, 0)

	if _, err := s.Update("BTCUSDT", "60", candleAt(base, 100)); err != nil {
		t.Fatalf("update: %v", err)
	}
	_, err := s.Update("BTCUSDT", "15", candleAt(base.Add(15*time.Minute), 101))
	if !errors.Is(err, ErrIntervalMismatch) {
		t.Fatalf("err = %v, want ErrIntervalMismatch", err)
	}

	// "1h" и "60" — один и тот же интервал
	if _, err := s.Update("BTCUSDT", "1h", candleAt(base.Add(time.Hour), 101)); err != nil {
		t.Fatalf("normalized interval rejected: %v", err)
	}
}

func TestSetCapacityShrinksLazily(t *testing.T) {
	s := NewStore()
	s.Init("BTCUSDT", "60", 5)

	base := time.Unix(1_700_000_000, 0)
	for i := 0; i < 5; i++ {
		if _, err := s.Update("BTCUSDT", "60", candleAt(base.Add(time.Duration(i)*time.Hour), float64(i))); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	s.SetCapacity("BTCUSDT", 2)
	// усечение ленивое: до следующего Update окно не трогаем
	if n := s.Len("BTCUSDT"); n != 5 {
		t.Fatalf("len after shrink = %d, want 5 (lazy)", n)
	}

	snap, err := s.Update("BTCUSDT", "60", candleAt(base.Add(5*time.Hour), 5))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(snap) != 2 || snap[0].Close != 4 || snap[1].Close != 5 {
		t.Fatalf("shrink applied wrong: %+v", snap)
	}
}

func TestUpdateAppendsAcrossFeedGap(t *testing.T) {
	s := NewStore()
	s.Init("BTCUSDT", "60", 10)

	base := time.Unix(1_700_000_000, 0)
	if _, err := s.Update("BTCUSDT", "60", candleAt(base, 100)); err != nil {
		t.Fatalf("update: %v", err)
	}

	// дыра в фиде: следующая свеча через 3 часа вместо одного.
	// Она просто дописывается, пропуск ничем не заполняется.
	snap, err := s.Update("BTCUSDT", "60", candleAt(base.Add(3*time.Hour), 103))
	if err != nil {
		t.Fatalf("update after gap: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("len = %d, want 2 (no fabricated candles)", len(snap))
	}
	if snap[0].Close != 100 || snap[1].Close != 103 {
		t.Fatalf("wrong window after gap: %+v", snap)
	}
	if got := snap[1].CloseTime.Sub(snap[0].CloseTime); got != 3*time.Hour {
		t.Fatalf("gap not preserved: %v", got)
	}
}

func TestDropResetsSymbol(t *testing.T) {
	s := NewStore()
	base := time.Unix(1_700_000_000, 0)

	if _, err := s.Update("BTCUSDT", "60", candleAt(base, 100)); err != nil {
		t.Fatalf("update: %v", err)
	}
	s.Drop("BTCUSDT")

	// после Drop символ можно завести с другим интервалом
	if _, err := s.Update("BTCUSDT", "15", candleAt(base, 100)); err != nil {
		t.Fatalf("update after drop: %v", err)
	}
	if iv, ok := s.Interval("BTCUSDT"); !ok || iv != "15" {
		t.Fatalf("interval = %q, ok=%v, want 15", iv, ok)
	}
}
