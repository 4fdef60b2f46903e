// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package models

import (
	"fmt"
	"strings"
	"time"
)

// MediaType discriminates the two catalog tables.
type MediaType string

const (
	MediaAnime MediaType = "Anime"
	MediaManga MediaType = "Manga"
)

// ParseMediaType accepts "anime"/"manga" in any case.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anime":
		return MediaAnime, nil
	case "manga":
		return MediaManga, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// Valid reports whether m is one of the two known media types.
func (m MediaType) Valid() bool {
	return m == MediaAnime || m == MediaManga
}

// Table returns the catalog table for m. The result is always one of two
// constant identifiers and is safe to place in query text.
func (m MediaType) Table() string {
	if m == MediaManga {
		return "manga"
	}
	return "anime"
}

// EntityTypeID returns the numeric entity type stored in user_activity_history.
func (m MediaType) EntityTypeID() int {
	if m == MediaManga {
		return 2
	}
	return 1
}

// MediaTypeFromEntityID is the inverse of EntityTypeID.
func MediaTypeFromEntityID(id int) (MediaType, error) {
	switch id {
	case 1:
		return MediaAnime, nil
	case 2:
		return MediaManga, nil
	default:
		return "", fmt.Errorf("unknown entity type id %d", id)
	}
}

// Status vocabularies. Anime and manga never share a value.
const (
	AnimeStatusAiring      = "currently_airing"
	AnimeStatusFinished    = "finished_airing"
	AnimeStatusNotYetAired = "not_yet_aired"

	MangaStatusPublishing      = "currently_publishing"
	MangaStatusFinished        = "finished"
	MangaStatusOnHiatus        = "on_hiatus"
	MangaStatusDiscontinued    = "discontinued"
	MangaStatusNotYetPublished = "not_yet_published"
)

// OngoingStatus returns the "still running" status for m.
func (m MediaType) OngoingStatus() string {
	if m == MediaManga {
		return MangaStatusPublishing
	}
	return AnimeStatusAiring
}

// CompletedStatus returns the "finished" status for m.
func (m MediaType) CompletedStatus() string {
	if m == MediaManga {
		return MangaStatusFinished
	}
	return AnimeStatusFinished
}

// ContentItem is one catalog row, anime or manga. Media-specific columns
// are nil for the other type.
type ContentItem struct {
	ID             int64      `json:"id" db:"id"`
	MediaType      MediaType  `json:"media_type" db:"-"`
	Title          string     `json:"title" db:"title"`
	MainPicture    *string    `json:"main_picture,omitempty" db:"main_picture"`
	Genres         string     `json:"genres" db:"genres"`
	MeanRating     *float64   `json:"mean_rating,omitempty" db:"mean"`
	Rank           *int       `json:"rank,omitempty" db:"rank"`
	PopularityRank *int       `json:"popularity_rank,omitempty" db:"popularity"`
	Status         string     `json:"status" db:"status"`
	StartDate      *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty" db:"end_date"`
	Synopsis       *string    `json:"synopsis,omitempty" db:"synopsis"`

	// Anime
	NumEpisodes *int    `json:"num_episodes,omitempty" db:"num_episodes"`
	Studios     *string `json:"studios,omitempty" db:"studios"`
	AgeRating   *string `json:"age_rating,omitempty" db:"agerating"`

	// Manga
	NumVolumes  *int    `json:"num_volumes,omitempty" db:"num_volumes"`
	NumChapters *int    `json:"num_chapters,omitempty" db:"num_chapters"`
	Authors     *string `json:"authors,omitempty" db:"authors"`
	Format      *string `json:"format,omitempty" db:"media_type"`
}

// GenreSet splits the comma-joined genre string into lower-cased tags.
func (c *ContentItem) GenreSet() []string {
	return SplitGenres(c.Genres)
}

// SplitGenres splits a comma-joined tag string, trimming and lower-casing
// each tag and dropping empties.
func SplitGenres(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FeedbackRecord is a user's rating of one catalog entity.
type FeedbackRecord struct {
	UserID     int64      `json:"user_id" db:"userid"`
	EntityID   int64      `json:"entity_id" db:"entityid"`
	EntityType MediaType  `json:"entity_type" db:"entitytype"`
	Rating     int        `json:"rating" db:"rating"`
	ReviewDate *time.Time `json:"review_date,omitempty" db:"reviewdate"`
}

// Review is an approved community review of one catalog entity.
type Review struct {
	Username   string     `json:"username" db:"username"`
	Title      *string    `json:"title,omitempty" db:"reviewtitle"`
	Content    *string    `json:"content,omitempty" db:"reviewcontent"`
	Rating     int        `json:"rating" db:"rating"`
	Spoiler    bool       `json:"spoiler" db:"spoilerflag"`
	ReviewDate *time.Time `json:"review_date,omitempty" db:"reviewdate"`
}

// LikedIDs partitions feedback into the IDs of entities rated at or above
// threshold, keyed by media type. Duplicate ratings of the same entity
// contribute one ID.
func LikedIDs(feedback []FeedbackRecord, threshold int) map[MediaType][]int64 {
	liked := make(map[MediaType][]int64, 2)
	seen := make(map[MediaType]map[int64]struct{}, 2)
	for _, f := range feedback {
		if f.Rating < threshold || !f.EntityType.Valid() {
			continue
		}
		if seen[f.EntityType] == nil {
			seen[f.EntityType] = make(map[int64]struct{})
		}
		if _, dup := seen[f.EntityType][f.EntityID]; dup {
			continue
		}
		seen[f.EntityType][f.EntityID] = struct{}{}
		liked[f.EntityType] = append(liked[f.EntityType], f.EntityID)
	}
	return liked
}

// ActivityType is the activitytype column of user_activity_history.
type ActivityType int

const (
	ActivityViewed      ActivityType = 1
	ActivityRated       ActivityType = 2
	ActivityCommented   ActivityType = 3
	ActivityRecommended ActivityType = 4
)

// String returns the lower-case name used in logs and API responses.
func (a ActivityType) String() string {
	switch a {
	case ActivityViewed:
		return "viewed"
	case ActivityRated:
		return "rated"
	case ActivityCommented:
		return "commented"
	case ActivityRecommended:
		return "recommended"
	default:
		return fmt.Sprintf("activity(%d)", int(a))
	}
}

// ActivityEntry is one row of a user's activity history.
type ActivityEntry struct {
	UserID       int64        `json:"user_id"`
	EntityID     int64        `json:"entity_id"`
	EntityType   MediaType    `json:"entity_type"`
	ActivityType ActivityType `json:"activity_type"`
	Content      string       `json:"content,omitempty"`
	OccurredAt   time.Time    `json:"occurred_at"`
}
