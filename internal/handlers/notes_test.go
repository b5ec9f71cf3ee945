package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catatan-app/catatan/internal/models"
	"github.com/catatan-app/catatan/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockedView() *services.NoteView {
	hash := "hash"
	return &services.NoteView{
		Note: &models.Note{
			ID:           "note1",
			UserID:       "owner1",
			Title:        "Secret plans",
			Content:      "hidden",
			Visibility:   models.VisibilityProtected,
			PasswordHash: &hash,
			Version:      1,
		},
		Locked: true,
	}
}

func TestNoteHandler_Get_LockedNoteHasNullContent(t *testing.T) {
	service := &MockNoteService{
		GetFunc: func(ctx context.Context, noteID, requesterID, suppliedPassword string) (*services.NoteView, error) {
			return lockedView(), nil
		},
	}
	handler := NewNoteHandler(service)

	req := withURLParam(httptest.NewRequest("GET", "/notes/note1", nil), "noteID", "note1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Content)
	assert.True(t, resp.IsLocked)
	assert.True(t, resp.IsProtected)
	assert.Equal(t, "Secret plans", resp.Title)
	// The stored content must not leak anywhere in the body.
	assert.NotContains(t, rec.Body.String(), "hidden")
}

func TestNoteHandler_Get_PassesQueryPassword(t *testing.T) {
	var gotPassword string
	service := &MockNoteService{
		GetFunc: func(ctx context.Context, noteID, requesterID, suppliedPassword string) (*services.NoteView, error) {
			gotPassword = suppliedPassword
			view := lockedView()
			view.Locked = false
			view.Content = &view.Note.Content
			return view, nil
		},
	}
	handler := NewNoteHandler(service)

	req := withURLParam(httptest.NewRequest("GET", "/notes/note1?password=pass", nil), "noteID", "note1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pass", gotPassword)
}

func TestNoteHandler_VerifyPassword_WrongPassword(t *testing.T) {
	service := &MockNoteService{
		VerifyPasswordFunc: func(ctx context.Context, noteID, requesterID, password string) (*services.NoteView, error) {
			return nil, models.NewCredentialError(models.FieldPassword)
		},
	}
	handler := NewNoteHandler(service)

	req := withURLParam(jsonRequest(t, "POST", "/notes/note1/verify-password", map[string]string{
		"password": "wrong",
	}), "noteID", "note1")
	rec := httptest.NewRecorder()

	handler.VerifyPassword(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error_type":"password"`)
}

func TestNoteHandler_Create_RequiresAuth(t *testing.T) {
	handler := NewNoteHandler(&MockNoteService{})

	req := jsonRequest(t, "POST", "/notes", map[string]string{"title": "x", "content": "y"})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNoteHandler_Update_VersionConflict(t *testing.T) {
	service := &MockNoteService{
		UpdateFunc: func(ctx context.Context, noteID, requesterID string, input services.UpdateInput) (*services.NoteView, error) {
			return nil, models.ErrConflict
		},
	}
	handler := NewNoteHandler(service)

	req := asUser(withURLParam(jsonRequest(t, "PUT", "/notes/note1", map[string]string{
		"title": "renamed",
	}), "noteID", "note1"), "owner1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNoteHandler_Update_ThreeCredentialChange(t *testing.T) {
	var got services.UpdateInput
	service := &MockNoteService{
		UpdateFunc: func(ctx context.Context, noteID, requesterID string, input services.UpdateInput) (*services.NoteView, error) {
			got = input
			view := lockedView()
			view.Locked = false
			view.Content = &view.Note.Content
			return view, nil
		},
	}
	handler := NewNoteHandler(service)

	body := map[string]string{
		"visibility":       "protected",
		"password":         "newpass",
		"confirm_password": "newpass",
		"old_password":     "oldpass",
		"account_password": "hunter22",
	}
	req := asUser(withURLParam(jsonRequest(t, "PUT", "/notes/note1", body), "noteID", "note1"), "owner1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "newpass", got.Password)
	assert.Equal(t, "oldpass", got.OldPassword)
	assert.Equal(t, "hunter22", got.AccountPassword)
}

func TestNoteHandler_Delete_NotFound(t *testing.T) {
	service := &MockNoteService{
		DeleteFunc: func(ctx context.Context, noteID, requesterID string) error {
			return models.ErrNotFound
		},
	}
	handler := NewNoteHandler(service)

	req := asUser(withURLParam(httptest.NewRequest("DELETE", "/notes/missing", nil), "noteID", "missing"), "owner1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoteHandler_ListPublic_Pagination(t *testing.T) {
	var gotLimit, gotOffset int
	service := &MockNoteService{
		ListPublicFunc: func(ctx context.Context, requesterID, search string, limit, offset int) (*services.NoteList, error) {
			gotLimit, gotOffset = limit, offset
			return &services.NoteList{Notes: []*services.NoteView{}, Total: 0}, nil
		},
	}
	handler := NewNoteHandler(service)

	req := httptest.NewRequest("GET", "/notes?limit=50&offset=10", nil)
	rec := httptest.NewRecorder()

	handler.ListPublic(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 10, gotOffset)
}

func TestNoteHandler_ListPublic_ClampsBadPagination(t *testing.T) {
	var gotLimit, gotOffset int
	service := &MockNoteService{
		ListPublicFunc: func(ctx context.Context, requesterID, search string, limit, offset int) (*services.NoteList, error) {
			gotLimit, gotOffset = limit, offset
			return &services.NoteList{}, nil
		},
	}
	handler := NewNoteHandler(service)

	req := httptest.NewRequest("GET", "/notes?limit=9999&offset=-5", nil)
	rec := httptest.NewRecorder()

	handler.ListPublic(rec, req)

	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 0, gotOffset)
}
