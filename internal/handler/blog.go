package handler

// The blog is an ordinary document (a JSON array of posts) with a few
// extra routes on top: filtering by category, fetching one post by slug,
// upserting a single post and deleting by id. Whole-collection reads and
// writes go through the same service calls as every other resource, so the
// unfiltered GET returns exactly the stored bytes.

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/content"
)

// HandleListBlog returns the stored collection as is, or only the posts of
// one category when ?category= is given.
func (h *ContentHandler) HandleListBlog(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		body, err := h.content.Get(r.Context(), content.Blog)
		if err != nil {
			writeError(w, err, "Failed to load data")
			return
		}
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	posts, err := h.content.ListBlogPosts(r.Context(), category)
	if err != nil {
		writeError(w, err, "Failed to load data")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGetBlogPost returns the post whose slug matches {slug}, or 404.
func (h *ContentHandler) HandleGetBlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.content.GetBlogPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, "Failed to load data")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleSaveBlog takes a single post (upsert) or the whole collection.
//
//	[ {...}, {...} ]   replaces every post; ids must be unique
//	{ "id": "3", ... } merges into post 3; an id that matches no post is
//	                   treated like a new post
//	{ "title": ... }   appends with the next free id, today's date and a
//	                   slug derived from the title
//
// Either way the response data is the full collection after the write.
func (h *ContentHandler) HandleSaveBlog(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, maxDocumentBytes)
	if err != nil {
		writeError(w, err, "Failed to save data")
		return
	}

	saved, err := h.content.SaveBlog(r.Context(), body)
	if err != nil {
		writeError(w, err, "Failed to save data")
		return
	}
	writeSuccess(w, saved)
}

// HandleDeleteBlog removes the post named by ?id=. A missing id is a 400,
// an unknown one a 404; neither writes anything or makes a backup.
func (h *ContentHandler) HandleDeleteBlog(w http.ResponseWriter, r *http.Request) {
	remaining, err := h.content.DeleteBlogPost(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, err, "Failed to delete post")
		return
	}
	writeSuccess(w, remaining)
}
