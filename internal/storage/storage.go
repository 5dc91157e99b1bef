package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/hailam/chess50/internal/logging"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	prefixGame     = "game/"
)

var ErrGameNotFound = errors.New("game not found")

// UserPreferences stores user settings
type UserPreferences struct {
	Username    string    `json:"username"`
	Depth       int       `json:"depth"`
	PlayerColor string    `json:"player_color"`
	LastPlayed  time.Time `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:    "Player",
		Depth:       3,
		PlayerColor: "white",
		LastPlayed:  time.Now(),
	}
}

// GameStats stores results of the human's games against the engine.
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	Resignations   int            `json:"resignations"`
	WinsByDepth    map[string]int `json:"wins_by_depth"`
	WinsByColor    map[string]int `json:"wins_by_color"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByDepth: make(map[string]int),
		WinsByColor: make(map[string]int),
	}
}

// GameResult is a finished game from the human's point of view.
type GameResult struct {
	Won      bool
	Draw     bool
	Resigned bool
	Depth    int
	Color    string
	Duration time.Duration
}

// GameRecord is a stored game. Moves are in UCI notation, SAN holds the
// same moves for display.
type GameRecord struct {
	ID          string        `json:"id" yaml:"id"`
	White       string        `json:"white" yaml:"white"`
	Black       string        `json:"black" yaml:"black"`
	StartFEN    string        `json:"start_fen" yaml:"start_fen"`
	Moves       []string      `json:"moves" yaml:"moves"`
	SAN         []string      `json:"san" yaml:"san"`
	Result      string        `json:"result" yaml:"result"`
	Termination string        `json:"termination" yaml:"termination"`
	Depth       int           `json:"depth" yaml:"depth"`
	Started     time.Time     `json:"started" yaml:"started"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// WriteYAML exports the record as a YAML document.
func (r *GameRecord) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the database under dir. An empty dir means the
// platform data directory.
func Open(dir string, logger zerolog.Logger) (*Storage, error) {
	if dir == "" {
		var err error
		if dir, err = GetDatabaseDir(); err != nil {
			return nil, err
		}
	}
	opts := badger.DefaultOptions(dir).WithLogger(logging.BadgerLogger{Logger: logger})
	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the Storage.
func OpenInMemory(logger zerolog.Logger) (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(logging.BadgerLogger{Logger: logger})
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes key into v. A missing key leaves v untouched and reports
// false.
func (s *Storage) get(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	_, err := s.get(keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	_, err := s.get(keyStats, stats)
	return stats, err
}

// RecordResult updates statistics with a finished game.
func (s *Storage) RecordResult(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration
	if result.Resigned {
		stats.Resignations++
	}

	switch {
	case result.Draw:
		stats.Draws++
		stats.CurrentStreak = 0
	case result.Won:
		stats.Wins++
		stats.CurrentStreak++
		stats.LongestWinStrk = max(stats.LongestWinStrk, stats.CurrentStreak)
		stats.WinsByDepth[fmt.Sprint(result.Depth)]++
		stats.WinsByColor[result.Color]++
	default:
		stats.Losses++
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// SaveGame stores rec, giving it a time-ordered ID if it has none.
func (s *Storage) SaveGame(rec *GameRecord) error {
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		rec.ID = id.String()
	}
	return s.put(prefixGame+rec.ID, rec)
}

// LoadGame returns the game with the given ID.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrGameNotFound, id)
	}
	rec := &GameRecord{}
	found, err := s.get(prefixGame+id, rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return rec, nil
}

// ListGames returns stored games, oldest first. limit <= 0 means all.
func (s *Storage) ListGames(limit int) ([]*GameRecord, error) {
	var games []*GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixGame)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &GameRecord{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			}); err != nil {
				return err
			}
			games = append(games, rec)
			if limit > 0 && len(games) == limit {
				break
			}
		}
		return nil
	})
	return games, err
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}
