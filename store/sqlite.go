package store

import (
	"database/sql"
	"fmt"

	"github.com/minaorangina/continental/protocol"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id TEXT PRIMARY KEY,
	started_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS room_players (
	room_id TEXT NOT NULL,
	player_id TEXT NOT NULL,
	name TEXT NOT NULL,
	seat INTEGER NOT NULL,
	removed INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (room_id, player_id)
);
CREATE TABLE IF NOT EXISTS round_results (
	room_id TEXT NOT NULL,
	round INTEGER NOT NULL,
	player_id TEXT NOT NULL,
	score INTEGER NOT NULL,
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (room_id, round, player_id)
);`

// PlayerStat is what has been recorded about a player in a room
type PlayerStat struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rounds   int    `json:"rounds_played"`
	Removed  bool   `json:"removed"`
}

// SQLiteStore records rooms and round scores
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RoomStarted records the room and its players in seat order
func (s *SQLiteStore) RoomStarted(roomID string, players []protocol.Player) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR REPLACE INTO rooms (id) VALUES (?)", roomID); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO room_players (room_id, player_id, name, seat) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range players {
		if _, err := stmt.Exec(roomID, p.PlayerID, p.Name, i); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) PlayerRemoved(roomID, playerID string) error {
	res, err := s.db.Exec("UPDATE room_players SET removed = 1 WHERE room_id = ? AND player_id = ?", roomID, playerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayerID, playerID)
	}
	return nil
}

// RecordRound stores the cumulative score of every player after a round
func (s *SQLiteStore) RecordRound(roomID string, round int, standings []protocol.Standing) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO round_results (room_id, round, player_id, score) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range standings {
		if _, err := stmt.Exec(roomID, round, st.PlayerID, st.Score); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RoomStats returns every player of a room with their latest score, lowest first
func (s *SQLiteStore) RoomStats(roomID string) ([]PlayerStat, error) {
	rows, err := s.db.Query(`
SELECT rp.player_id, rp.name, rp.removed,
	COALESCE((SELECT rr.score FROM round_results rr
		WHERE rr.room_id = rp.room_id AND rr.player_id = rp.player_id
		ORDER BY rr.round DESC LIMIT 1), 0) AS score,
	(SELECT COUNT(*) FROM round_results rr
		WHERE rr.room_id = rp.room_id AND rr.player_id = rp.player_id) AS rounds
FROM room_players rp
WHERE rp.room_id = ?
ORDER BY score ASC, rp.seat ASC`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []PlayerStat{}
	for rows.Next() {
		var st PlayerStat
		if err := rows.Scan(&st.PlayerID, &st.Name, &st.Removed, &st.Score, &st.Rounds); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(stats) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGameID, roomID)
	}
	return stats, nil
}
