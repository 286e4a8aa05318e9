/*
 * MIT License
 *
 * Copyright (c) 2010 Nexopia.com, Inc.
 * Copyright (c) 2026 rbroemeling/udplogger contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package stats implements the statistics aggregator recovered from
// original_source/trunk/udplogger/udploggerstats.cc: per-hour-of-day rolling
// counters over a parsed entry's status, user sex and user type, persisted
// to SQLite via gorm so udploggerstats survives a restart instead of
// printing its std::map contents once at exit as the original did.
package stats

import (
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rbroemeling/udplogger/parser"
)

// Counter is one rolling (hour, dimension, key, tag) -> count row. The
// dimension/key pair replaces the original's three separate std::map sets
// (status_maps, usersex_maps, usertype_maps) with a single table.
type Counter struct {
	Hour      int    `gorm:"uniqueIndex:idx_counter,priority:1"`
	Dimension string `gorm:"uniqueIndex:idx_counter,priority:2"`
	Key       string `gorm:"uniqueIndex:idx_counter,priority:3"`
	Tag       string `gorm:"uniqueIndex:idx_counter,priority:4"`
	Count     int64
}

const (
	DimensionStatus   = "status"
	DimensionUserSex  = "user_sex"
	DimensionUserType = "user_type"
)

// Store is a SQLite-backed Counter table.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// migrates the Counter schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Counter{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record upserts the three dimensions the original aggregator tracked for
// one parsed entry, bucketed by the wall-clock hour of ingestion. The
// original bucketed by a timestamp field carried in its lighttpd-derived
// log line; that field is outside this rewrite's Entry (spec.md §3 does not
// carry it), so Record uses the time the line was received instead.
func (s *Store) Record(e parser.Entry, now time.Time) error {
	hour := now.Hour()

	if err := s.bump(hour, DimensionStatus, strconv.Itoa(e.Status), e.Tag); err != nil {
		return err
	}
	if err := s.bump(hour, DimensionUserSex, e.UserSex.String(), e.Tag); err != nil {
		return err
	}
	if err := s.bump(hour, DimensionUserType, e.UserType.String(), e.Tag); err != nil {
		return err
	}
	return nil
}

// bump increments one counter row, creating it at count 1 if absent.
func (s *Store) bump(hour int, dimension, key, tag string) error {
	// A map condition keeps zero values (hour 0, empty tag) in the WHERE
	// clause, which a struct condition would drop.
	cond := map[string]interface{}{"hour": hour, "dimension": dimension, "key": key, "tag": tag}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var c Counter
		err := tx.Where(cond).First(&c).Error
		switch err {
		case nil:
			return tx.Model(&Counter{}).Where(cond).Update("count", c.Count+1).Error
		case gorm.ErrRecordNotFound:
			return tx.Create(&Counter{Hour: hour, Dimension: dimension, Key: key, Tag: tag, Count: 1}).Error
		default:
			return err
		}
	})
}

// Snapshot returns every counter row for dimension, for reporting.
func (s *Store) Snapshot(dimension string) ([]Counter, error) {
	var rows []Counter
	err := s.db.Where("dimension = ?", dimension).Order("hour, key").Find(&rows).Error
	return rows, err
}
