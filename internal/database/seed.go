// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/otakuconnect/internal/logging"
	"github.com/tomtom215/otakuconnect/internal/models"
)

// InsertContent writes catalog rows. Rows are inserted in one transaction.
func (db *DB) InsertContent(ctx context.Context, items []models.ContentItem) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	for i := range items {
		it := &items[i]
		var (
			columns []string
			args    []interface{}
		)
		switch it.MediaType {
		case models.MediaAnime:
			columns = strings.Split(animeColumns, ", ")
			args = []interface{}{it.ID, it.Title, it.MainPicture, it.Genres, it.MeanRating, it.Rank, it.PopularityRank,
				it.Status, it.StartDate, it.EndDate, it.Synopsis, it.NumEpisodes, it.Studios, it.AgeRating}
		case models.MediaManga:
			columns = strings.Split(mangaColumns, ", ")
			args = []interface{}{it.ID, it.Title, it.MainPicture, it.Genres, it.MeanRating, it.Rank, it.PopularityRank,
				it.Status, it.StartDate, it.EndDate, it.Synopsis, it.NumVolumes, it.NumChapters, it.Authors, it.Format}
		default:
			return fmt.Errorf("%w: item %d has %q", ErrInvalidMediaType, it.ID, it.MediaType)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(buildInsert(it.MediaType.Table(), columns)), args...); err != nil {
			return fmt.Errorf("insert %s %d: %w", it.MediaType.Table(), it.ID, err)
		}
	}

	return tx.Commit()
}

// SeedSampleCatalog loads a small demo catalog for local development. It is
// a no-op when the anime table already has rows.
func (db *DB) SeedSampleCatalog(ctx context.Context) error {
	var n int
	if err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM anime"); err != nil {
		return fmt.Errorf("count anime: %w", err)
	}
	if n > 0 {
		return nil
	}

	items := SampleCatalog(time.Now().UTC())
	if err := db.InsertContent(ctx, items); err != nil {
		return err
	}
	logging.Info().Int("items", len(items)).Msg("Seeded sample catalog")
	return nil
}

// SampleCatalog returns demo rows. Two anime start within the last month
// relative to now so the latest listing is never empty.
func SampleCatalog(now time.Time) []models.ContentItem {
	date := func(y int, m time.Month) *time.Time {
		t := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}
	recent := func(daysAgo int) *time.Time {
		t := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
		return &t
	}
	f := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }
	s := func(v string) *string { return &v }

	return []models.ContentItem{
		{ID: 5114, MediaType: models.MediaAnime, Title: "Fullmetal Alchemist: Brotherhood", Genres: "Action, Adventure, Drama, Fantasy",
			MeanRating: f(9.1), Rank: i(2), PopularityRank: i(3), Status: models.AnimeStatusFinished, StartDate: date(2009, time.April), NumEpisodes: i(64), Studios: s("Bones")},
		{ID: 52991, MediaType: models.MediaAnime, Title: "Sousou no Frieren", Genres: "Adventure, Drama, Fantasy",
			MeanRating: f(9.3), Rank: i(1), PopularityRank: i(150), Status: models.AnimeStatusFinished, StartDate: date(2023, time.September), NumEpisodes: i(28), Studios: s("Madhouse")},
		{ID: 40748, MediaType: models.MediaAnime, Title: "Jujutsu Kaisen", Genres: "Action, Fantasy, Supernatural",
			MeanRating: f(8.6), Rank: i(120), PopularityRank: i(20), Status: models.AnimeStatusFinished, StartDate: date(2020, time.October), NumEpisodes: i(24), Studios: s("MAPPA")},
		{ID: 2251, MediaType: models.MediaAnime, Title: "Baccano!", Genres: "Action, Mystery, Supernatural",
			MeanRating: f(8.3), Rank: i(310), PopularityRank: i(1200), Status: models.AnimeStatusFinished, StartDate: date(2007, time.July), NumEpisodes: i(13), Studios: s("Brain's Base")},
		{ID: 37965, MediaType: models.MediaAnime, Title: "Kaguya-sama: Love is War", Genres: "Comedy, Romance",
			MeanRating: f(8.4), Rank: i(260), PopularityRank: i(90), Status: models.AnimeStatusFinished, StartDate: date(2019, time.January), NumEpisodes: i(12), Studios: s("A-1 Pictures")},
		{ID: 59001, MediaType: models.MediaAnime, Title: "Season Premiere Demo", Genres: "Sports, Drama",
			MeanRating: f(7.9), PopularityRank: i(2400), Status: models.AnimeStatusAiring, StartDate: recent(10), NumEpisodes: i(12)},
		{ID: 59002, MediaType: models.MediaAnime, Title: "Another New Show", Genres: "Sci-Fi, Slice of Life",
			MeanRating: f(7.6), PopularityRank: i(3100), Status: models.AnimeStatusAiring, StartDate: recent(25)},
		{ID: 2, MediaType: models.MediaManga, Title: "Berserk", Genres: "Action, Adventure, Drama, Fantasy, Horror",
			MeanRating: f(9.47), Rank: i(1), PopularityRank: i(2), Status: models.MangaStatusOnHiatus, StartDate: date(1989, time.August), Authors: s("Miura, Kentarou"), Format: s("manga")},
		{ID: 1, MediaType: models.MediaManga, Title: "Monster", Genres: "Drama, Mystery, Thriller",
			MeanRating: f(9.16), Rank: i(3), PopularityRank: i(20), Status: models.MangaStatusFinished, StartDate: date(1994, time.December), NumVolumes: i(18), Authors: s("Urasawa, Naoki"), Format: s("manga")},
		{ID: 104565, MediaType: models.MediaManga, Title: "Yotsuba to!", Genres: "Comedy, Slice of Life",
			MeanRating: f(8.9), Rank: i(30), PopularityRank: i(1500), Status: models.MangaStatusPublishing, StartDate: date(2003, time.March), Authors: s("Azuma, Kiyohiko"), Format: s("manga")},
		{ID: 21479, MediaType: models.MediaManga, Title: "Shiki", Genres: "Horror, Mystery, Supernatural",
			MeanRating: f(8.1), Rank: i(700), PopularityRank: i(2800), Status: models.MangaStatusFinished, StartDate: date(2008, time.January), NumVolumes: i(11), Format: s("manga")},
	}
}
