package mealie

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
)

// ── Wire types ───────────────────────────────────────────────────

// recipeStub is the name-only create payload. The server derives the slug
// and returns it as the response body.
type recipeStub struct {
	Name string `json:"name"`
}

// recipePatch is the full-content payload sent after the stub exists.
type recipePatch struct {
	Name               string                `json:"name"`
	Description        string                `json:"description,omitempty"`
	RecipeYield        string                `json:"recipeYield,omitempty"`
	PrepTime           string                `json:"prepTime,omitempty"`
	PerformTime        string                `json:"performTime,omitempty"`
	TotalTime          string                `json:"totalTime,omitempty"`
	OrgURL             string                `json:"orgURL,omitempty"`
	DateAdded          string                `json:"dateAdded,omitempty"`
	CreatedAt          string                `json:"createdAt,omitempty"`
	RecipeCategory     []domain.OrganizerRef `json:"recipeCategory,omitempty"`
	Tags               []domain.OrganizerRef `json:"tags,omitempty"`
	RecipeIngredient   []ingredientEntry     `json:"recipeIngredient"`
	RecipeInstructions []instructionStep     `json:"recipeInstructions"`
	Notes              []recipeNote          `json:"notes,omitempty"`
}

// ingredientEntry carries one free-text ingredient. The server wants a
// fresh referenceId per entry; title is only set on the first ingredient
// of a section.
type ingredientEntry struct {
	Title       string `json:"title,omitempty"`
	Note        string `json:"note"`
	ReferenceID string `json:"referenceId"`
}

// instructionStep must carry all five fields even when empty, or the
// server rejects the patch.
type instructionStep struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Summary              string   `json:"summary"`
	Text                 string   `json:"text"`
	IngredientReferences []string `json:"ingredientReferences"`
}

type recipeNote struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ── Operations ───────────────────────────────────────────────────

// CreateRecipe creates a name-only stub and returns the server-assigned
// slug. Returns domain.ErrAlreadyExists when a recipe with that name is
// already present.
func (c *Client) CreateRecipe(ctx context.Context, name string) (string, error) {
	var slug string
	if err := c.do(ctx, http.MethodPost, "/api/recipes", recipeStub{Name: name}, &slug); err != nil {
		return "", err
	}
	return slug, nil
}

// UpdateRecipe patches full recipe content onto a previously created stub.
func (c *Client) UpdateRecipe(ctx context.Context, slug string, draft *domain.RecipeDraft, categories, tags []domain.OrganizerRef) error {
	return c.do(ctx, http.MethodPatch, "/api/recipes/"+slug, buildPatch(draft, categories, tags), nil)
}

// buildPatch assembles the wire payload from a draft and its resolved
// organizer refs.
func buildPatch(draft *domain.RecipeDraft, categories, tags []domain.OrganizerRef) *recipePatch {
	p := &recipePatch{
		Name:               draft.Title,
		Description:        draft.Description,
		RecipeYield:        draft.Yield,
		PrepTime:           draft.PrepTime,
		PerformTime:        draft.CookTime,
		TotalTime:          draft.TotalTime,
		OrgURL:             draft.SourceURL,
		RecipeCategory:     categories,
		Tags:               tags,
		RecipeIngredient:   make([]ingredientEntry, 0, len(draft.Ingredients)),
		RecipeInstructions: make([]instructionStep, 0, len(draft.Instructions)),
	}
	if !draft.Added.IsZero() {
		p.DateAdded = draft.Added.Format("2006-01-02")
		p.CreatedAt = draft.Added.Format(time.RFC3339)
	}
	for _, ing := range draft.Ingredients {
		p.RecipeIngredient = append(p.RecipeIngredient, ingredientEntry{
			Title:       ing.GroupTitle,
			Note:        ing.Text,
			ReferenceID: uuid.NewString(),
		})
	}
	for _, step := range draft.Instructions {
		p.RecipeInstructions = append(p.RecipeInstructions, instructionStep{
			ID:                   uuid.NewString(),
			Title:                step.Title,
			Text:                 step.Text,
			IngredientReferences: []string{},
		})
	}
	for _, n := range draft.Notes {
		p.Notes = append(p.Notes, recipeNote{Title: n.Title, Text: n.Text})
	}
	return p
}

// UploadImage attaches a hero image to a recipe. The upload is a multipart
// form with the raw bytes under "image" and the format under "extension";
// the server rejects uploads without the extension field.
func (c *Client) UploadImage(ctx context.Context, slug string, img *domain.ImageBlob) error {
	if img == nil || len(img.Data) == 0 {
		return nil
	}
	return c.retryCall(ctx, func() error {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="recipe.%s"`, img.Ext))
		header.Set("Content-Type", "image/"+img.Ext)
		part, err := w.CreatePart(header)
		if err != nil {
			return fmt.Errorf("mealie: build image upload: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return fmt.Errorf("mealie: build image upload: %w", err)
		}
		if err := w.WriteField("extension", img.Ext); err != nil {
			return fmt.Errorf("mealie: build image upload: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("mealie: build image upload: %w", err)
		}

		path := "/api/recipes/" + slug + "/image"
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+path, &buf)
		if err != nil {
			return fmt.Errorf("mealie: create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", w.FormDataContentType())

		c.log.Debug("mealie: PUT %s (%s image, %d bytes)", path, img.Ext, len(img.Data))

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("mealie: PUT %s: %w", path, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("mealie: read response: %w", err)
		}
		return statusErr(http.MethodPut, path, resp.StatusCode, respBody)
	})
}
