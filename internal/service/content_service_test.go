package service_test

import (
	"classroomlive/internal/model"
	"classroomlive/internal/service"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestShareValidation(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)
	e.sit(t, classroom.ID, seats[0], "student-1", "Ada")
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.ShareInput
		wantErr error
	}{
		{
			name:    "unknown kind",
			input:   service.ShareInput{ContentType: "video"},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "link without url",
			input:   service.ShareInput{ContentType: model.ContentLink},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "screenshot without file or link",
			input:   service.ShareInput{ContentType: model.ContentScreenshot},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "document without file or link",
			input:   service.ShareInput{ContentType: model.ContentDocument},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:  "link",
			input: service.ShareInput{ContentType: model.ContentLink, Link: "https://example.com/demo"},
		},
		{
			name:  "screenshot via link",
			input: service.ShareInput{ContentType: model.ContentScreenshot, Link: "https://example.com/shot.png"},
		},
		{
			name:  "code in description",
			input: service.ShareInput{ContentType: model.ContentCode, Description: `{"code":"print(1)","language":"python"}`},
		},
		{
			name:  "notes",
			input: service.ShareInput{ContentType: model.ContentNotes, Description: "standup notes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.contentSvc.Share(ctx, "student-1", seats[0], tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Share: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestShareRequiresOwnSeat(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	e.enroll("student-2")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)
	e.sit(t, classroom.ID, seats[0], "student-1", "Ada")
	ctx := context.Background()

	input := service.ShareInput{ContentType: model.ContentNotes, Description: "notes"}

	if _, err := e.contentSvc.Share(ctx, "student-2", seats[0], input); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := e.contentSvc.Share(ctx, "student-1", "no-such-seat", input); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestShareUploadStoresBlob(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)
	e.sit(t, classroom.ID, seats[0], "student-1", "Ada")

	content, err := e.contentSvc.Share(context.Background(), "student-1", seats[0], service.ShareInput{
		ContentType: model.ContentScreenshot,
		Filename:    "shot.png",
		File:        strings.NewReader("pngbytes"),
	})
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if content.FileURL != "/media/shot.png" {
		t.Fatalf("unexpected file URL %q", content.FileURL)
	}
	if content.URL() != content.FileURL {
		t.Fatalf("URL() should prefer the uploaded file, got %q", content.URL())
	}
	if len(e.blobs.saved) != 1 || e.blobs.saved[0] != "shot.png" {
		t.Fatalf("blob store saw %v", e.blobs.saved)
	}

	events := e.pub.ofType(service.MsgContentShare)
	if len(events) != 1 {
		t.Fatalf("expected 1 content_share event, got %d", len(events))
	}
}

func TestDetailAccess(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	e.enroll("student-2")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)
	e.sit(t, classroom.ID, seats[0], "student-1", "Ada")
	ctx := context.Background()

	content, err := e.contentSvc.Share(ctx, "student-1", seats[0], service.ShareInput{
		ContentType: model.ContentLink,
		Link:        "https://example.com/demo",
	})
	if err != nil {
		t.Fatalf("Share: %v", err)
	}

	// Any classroom participant can read; outsiders cannot.
	if _, err := e.contentSvc.Detail(ctx, "student-2", content.ID); err != nil {
		t.Fatalf("Detail as classmate: %v", err)
	}
	if _, err := e.contentSvc.Detail(ctx, teacherID, content.ID); err != nil {
		t.Fatalf("Detail as teacher: %v", err)
	}
	if _, err := e.contentSvc.Detail(ctx, "stranger", content.ID); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := e.contentSvc.Detail(ctx, "student-1", "no-such-content"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
