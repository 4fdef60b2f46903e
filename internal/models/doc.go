// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

/*
Package models defines the data structures shared by the catalog store,
the recommendation engine and the HTTP API.

Catalog:

  - MediaType: Anime or Manga, with the table name, entity type ID and
    status vocabulary for each
  - ContentItem: one row of the anime or manga table, scanned by sqlx
  - FeedbackRecord: a user's 1-10 rating of an entity; LikedIDs derives the
    liked set per media type

Activity:

  - ActivityType: viewed, rated, commented, recommended
  - ActivityEntry: one user_activity_history row

API:

  - APIResponse, Metadata, APIError: the response envelope
  - AssistantRequest, ShuffleRequest: request bodies with validator tags

Example:

	item := models.ContentItem{ID: 5114, MediaType: models.MediaAnime, Genres: "Action, Drama"}
	item.GenreSet() // ["action", "drama"]
*/
package models
