package domain

import (
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

func TestNormalizeNotification_ReadFlagPriority(t *testing.T) {
	tests := []struct {
		name     string
		read     *bool
		isRead   *bool
		wantRead bool
	}{
		{"neither present defaults to unread", nil, nil, false},
		{"read true", boolPtr(true), nil, true},
		{"read false", boolPtr(false), nil, false},
		{"isRead false means seen", nil, boolPtr(false), true},
		{"isRead true means not yet seen", nil, boolPtr(true), false},
		{"read wins over conflicting isRead", boolPtr(true), boolPtr(true), true},
		{"read false wins over isRead false", boolPtr(false), boolPtr(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NormalizeNotification(WireNotification{
				ID:     "n-1",
				Read:   tt.read,
				IsRead: tt.isRead,
			})
			if rec.Read != tt.wantRead {
				t.Errorf("normalized Read = %v, want %v", rec.Read, tt.wantRead)
			}
		})
	}
}

func TestNormalizeNotification_CopiesFields(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := NormalizeNotification(WireNotification{
		ID:        "n-2",
		Title:     "Lab results ready",
		Message:   "Your results are available",
		CreatedAt: created,
		Link:      "/results/42",
	})

	if rec.ID != "n-2" || rec.Title != "Lab results ready" || rec.Link != "/results/42" {
		t.Errorf("unexpected normalized record: %+v", rec)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, created)
	}
}

func TestIdentity_Usable(t *testing.T) {
	if (Identity{SubjectID: "u-1", Role: RolePatient}).Usable() == false {
		t.Error("patient with subject should be usable")
	}
	if (Identity{SubjectID: "u-1", Role: Role("superuser")}).Usable() {
		t.Error("unknown role must not be usable")
	}
	if (Identity{Role: RoleAdmin}).Usable() {
		t.Error("missing subject must not be usable")
	}
}

func TestIdentity_IsApprovedDoctor(t *testing.T) {
	approved := Identity{SubjectID: "d-1", Role: RoleDoctor, DoctorStatus: DoctorApproved}
	pending := Identity{SubjectID: "d-2", Role: RoleDoctor, DoctorStatus: DoctorPending}
	patient := Identity{SubjectID: "p-1", Role: RolePatient}

	if !approved.IsApprovedDoctor() {
		t.Error("approved doctor should pass")
	}
	if pending.IsApprovedDoctor() {
		t.Error("pending doctor must not pass")
	}
	if patient.IsApprovedDoctor() {
		t.Error("patient must not pass")
	}
}
