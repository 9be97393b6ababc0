package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/model"
)

// SaveBlog accepts either the whole collection (a JSON array, stored as is)
// or a single post (a JSON object, upserted by id). It returns the
// collection as stored.
func (s *ContentService) SaveBlog(ctx context.Context, body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, apperror.ValidationFailed("", "request body must be valid JSON")
	}
	switch trimmed[0] {
	case '[':
		return s.Save(ctx, content.Blog, body)
	case '{':
		return s.upsertBlogPost(ctx, trimmed)
	default:
		return nil, apperror.ValidationFailed("", "blog body must be a post object or an array of posts")
	}
}

// upsertBlogPost merges a post into the collection. A post whose id matches
// a stored one overwrites the fields it carries and gets updatedAt = today.
// Anything else is appended with the next numeric id, publishedAt = today,
// a computed reading time and, when missing, a slug derived from the title.
func (s *ContentService) upsertBlogPost(ctx context.Context, body []byte) ([]byte, error) {
	if !json.Valid(body) {
		return nil, apperror.ValidationFailed("", "request body must be valid JSON")
	}
	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(body, &incoming); err != nil {
		return nil, apperror.ValidationFailed("", "blog post must be a JSON object")
	}
	var post model.BlogPost
	if err := json.Unmarshal(body, &post); err != nil {
		return nil, apperror.ValidationFailed("", "blog post does not match the post shape")
	}

	today := s.today()
	var savedID string

	out, err := s.update(ctx, content.Blog, func(current []byte) ([]byte, error) {
		var posts []map[string]json.RawMessage
		if err := json.Unmarshal(current, &posts); err != nil {
			return nil, fmt.Errorf("decoding stored blog posts: %w", err)
		}

		idx := -1
		if post.ID != "" {
			for i, p := range posts {
				if rawString(p["id"]) == post.ID {
					idx = i
					break
				}
			}
		}

		var merged map[string]json.RawMessage
		if idx >= 0 {
			merged = posts[idx]
			for k, v := range incoming {
				merged[k] = v
			}
			merged["updatedAt"] = jsonString(today)
		} else {
			merged = incoming
			merged["id"] = jsonString(nextPostID(posts))
			merged["publishedAt"] = jsonString(today)
			merged["readingTime"] = json.RawMessage(strconv.Itoa(content.ReadingTime(post.Content)))
			if post.Slug == "" {
				merged["slug"] = jsonString(content.Slugify(post.Title))
			}
		}

		var check model.BlogPost
		raw, err := marshalJSON(merged)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &check); err != nil {
			return nil, apperror.ValidationFailed("", "blog post does not match the post shape")
		}
		if err := content.CheckBlogPost(s.validate, check); err != nil {
			return nil, err
		}
		savedID = check.ID

		if idx >= 0 {
			posts[idx] = merged
		} else {
			posts = append(posts, merged)
		}
		return marshalJSON(posts)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("blog post saved", slog.String("id", savedID))
	return out, nil
}

// DeleteBlogPost removes the post with the given id and returns the
// remaining collection. An unknown id leaves the store untouched.
func (s *ContentService) DeleteBlogPost(ctx context.Context, id string) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Post ID required")
	}

	out, err := s.update(ctx, content.Blog, func(current []byte) ([]byte, error) {
		var posts []map[string]json.RawMessage
		if err := json.Unmarshal(current, &posts); err != nil {
			return nil, fmt.Errorf("decoding stored blog posts: %w", err)
		}

		kept := make([]map[string]json.RawMessage, 0, len(posts))
		for _, p := range posts {
			if rawString(p["id"]) != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(posts) {
			return nil, apperror.NotFound("blog post", id)
		}
		return marshalJSON(kept)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("blog post deleted", slog.String("id", id))
	return out, nil
}

// ListBlogPosts returns the posts in stored order, optionally restricted to
// one category (compared case-insensitively).
func (s *ContentService) ListBlogPosts(ctx context.Context, category string) ([]model.BlogPost, error) {
	var posts []model.BlogPost
	if err := s.Decode(ctx, content.Blog, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Slug == "" {
			posts[i].Slug = content.Slugify(posts[i].Title)
		}
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return posts, nil
	}
	filtered := []model.BlogPost{}
	for _, p := range posts {
		if strings.EqualFold(p.Category, category) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetBlogPost finds a post by slug. Posts saved without a slug are matched
// on the slug their title would produce.
func (s *ContentService) GetBlogPost(ctx context.Context, slug string) (*model.BlogPost, error) {
	posts, err := s.ListBlogPosts(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Slug == slug {
			return &posts[i], nil
		}
	}
	return nil, apperror.NotFound("blog post", slug)
}

// nextPostID is one more than the largest numeric id in use. Non-numeric ids
// are ignored.
func nextPostID(posts []map[string]json.RawMessage) string {
	highest := 0
	for _, p := range posts {
		if n, err := strconv.Atoi(rawString(p["id"])); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

// rawString decodes a JSON string, returning "" for anything else.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func jsonString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
