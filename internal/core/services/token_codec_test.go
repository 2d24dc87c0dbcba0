package services_test

import (
	"errors"
	"testing"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/services"
	"github.com/curalink/telehealth/session-gateway/test/mocks"
)

func TestTokenCodec_MalformedTokens(t *testing.T) {
	codec := services.NewTokenCodec()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not a token", "hello"},
		{"two segments", "aaaa.bbbb"},
		{"four segments", "aa.bb.cc.dd"},
		{"undecodable payload", "eyJhbGciOiJIUzI1NiJ9.!!!not-base64!!!.c2ln"},
		{"payload is not an object", mocks.MakeToken(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := codec.Decode(tt.raw)
			if err == nil {
				t.Fatalf("expected decode failure, got identity %+v", id)
			}
			if !errors.Is(err, services.ErrDecode) {
				t.Errorf("error %v is not ErrDecode", err)
			}
			if id != (domain.Identity{}) {
				t.Errorf("failure must not leak a partial identity, got %+v", id)
			}
		})
	}
}

func TestTokenCodec_NoUsableShape(t *testing.T) {
	codec := services.NewTokenCodec()

	// Well-formed token, but no shape yields subject + role.
	raw := mocks.MakeToken(map[string]any{"email": "x@example.com", "exp": 4102444800})
	if _, err := codec.Decode(raw); !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode for shapeless claims, got %v", err)
	}
}

func TestTokenCodec_FlatShape(t *testing.T) {
	codec := services.NewTokenCodec()

	raw := mocks.MakeToken(map[string]any{
		"sub":     "u-9",
		"email":   "doc@example.com",
		"role":    "doctor",
		"name":    "Dr. Chen",
		"picture": "https://cdn.example.com/p.png",
	})
	id, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id.SubjectID != "u-9" || id.Role != domain.RoleDoctor || id.Name != "Dr. Chen" {
		t.Errorf("unexpected identity: %+v", id)
	}
	if id.Token != raw {
		t.Error("identity must carry the raw token")
	}
}

func TestTokenCodec_NestedShapes(t *testing.T) {
	codec := services.NewTokenCodec()

	underUser := mocks.MakeToken(map[string]any{
		"user": map[string]any{
			"_id":            "u-3",
			"email":          "p@example.com",
			"role":           "patient",
			"profilePicture": "https://cdn.example.com/a.png",
		},
	})
	id, err := codec.Decode(underUser)
	if err != nil {
		t.Fatalf("decode user-nested: %v", err)
	}
	if id.SubjectID != "u-3" || id.Role != domain.RolePatient || id.PictureURL != "https://cdn.example.com/a.png" {
		t.Errorf("unexpected identity: %+v", id)
	}

	underIDUser := mocks.MakeToken(map[string]any{
		"id": map[string]any{
			"user": map[string]any{
				"_id":  "u-4",
				"role": "admin",
			},
		},
	})
	id, err = codec.Decode(underIDUser)
	if err != nil {
		t.Fatalf("decode id.user-nested: %v", err)
	}
	if id.SubjectID != "u-4" || id.Role != domain.RoleAdmin {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestTokenCodec_FlatShapeWinsOverNested(t *testing.T) {
	codec := services.NewTokenCodec()

	// Both shapes present: the flat one is checked first and wins,
	// shapes are never merged.
	raw := mocks.MakeToken(map[string]any{
		"sub":  "flat-user",
		"role": "patient",
		"user": map[string]any{
			"_id":  "nested-user",
			"role": "admin",
			"name": "Nested Name",
		},
	})
	id, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id.SubjectID != "flat-user" || id.Role != domain.RolePatient {
		t.Errorf("flat shape should win, got %+v", id)
	}
	if id.Name != "" {
		t.Errorf("no merging across shapes, got name %q", id.Name)
	}
}

func TestTokenCodec_DoctorStatus(t *testing.T) {
	codec := services.NewTokenCodec()

	raw := mocks.MakeToken(map[string]any{
		"sub":          "d-7",
		"role":         "doctor",
		"doctorStatus": "pending",
	})
	id, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id.DoctorStatus != domain.DoctorPending {
		t.Errorf("DoctorStatus = %q, want pending", id.DoctorStatus)
	}
}
