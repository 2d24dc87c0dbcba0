package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/storage"
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/services"
	"github.com/curalink/telehealth/session-gateway/test/mocks"
)

func newStore() (*storage.CredentialStore, *storage.MemoryKV) {
	kv := storage.NewMemoryKV()
	return storage.NewCredentialStore(kv, services.NewTokenCodec()), kv
}

func patientIdentity() domain.Identity {
	return domain.Identity{
		SubjectID: "patient-1",
		Email:     "alice@example.com",
		Role:      domain.RolePatient,
		Name:      "Alice",
		Token:     mocks.PatientToken(),
	}
}

func TestCredentialStore_SaveWritesAllKeyFormats(t *testing.T) {
	ctx := context.Background()
	store, kv := newStore()

	if err := store.Save(ctx, patientIdentity()); err != nil {
		t.Fatalf("save: %v", err)
	}

	for _, key := range []string{"token", "cht_token", "cht_user", "userInfo"} {
		if v, ok, _ := kv.Get(ctx, key); !ok || v == "" {
			t.Errorf("key %q not written on save", key)
		}
	}
}

func TestCredentialStore_LoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	want := patientIdentity()

	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok := store.Load(ctx)
	if !ok {
		t.Fatal("load returned no identity")
	}
	if got.SubjectID != want.SubjectID || got.Role != want.Role || got.Name != want.Name {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
	if got.Token != want.Token {
		t.Error("loaded identity must carry the token")
	}
}

func TestCredentialStore_SnapshotWinsOverTokenFields(t *testing.T) {
	ctx := context.Background()
	store, kv := newStore()

	// Token claims say "Alice"; the snapshot carries a fresher name
	// plus a field the token omits entirely.
	_ = kv.Set(ctx, "token", mocks.PatientToken())
	_ = kv.Set(ctx, "cht_user", `{"_id":"patient-1","email":"alice@example.com","role":"patient","name":"Alice Walker","profilePicture":"https://cdn.example.com/new.png"}`)

	got, ok := store.Load(ctx)
	if !ok {
		t.Fatal("load returned no identity")
	}
	if got.Name != "Alice Walker" {
		t.Errorf("snapshot name should win, got %q", got.Name)
	}
	if got.PictureURL != "https://cdn.example.com/new.png" {
		t.Errorf("snapshot-only field missing, got %q", got.PictureURL)
	}
}

func TestCredentialStore_LegacyOnlyLoad(t *testing.T) {
	ctx := context.Background()
	store, kv := newStore()

	_ = kv.Set(ctx, "userInfo", `{"_id":"u-old","email":"old@example.com","role":"doctor","doctorStatus":"approved","token":"legacy-token"}`)

	got, ok := store.Load(ctx)
	if !ok {
		t.Fatal("legacy blob should load")
	}
	if got.SubjectID != "u-old" || got.Role != domain.RoleDoctor || got.Token != "legacy-token" {
		t.Errorf("unexpected identity from legacy blob: %+v", got)
	}
}

func TestCredentialStore_GarbledTokenFallsBackToSnapshot(t *testing.T) {
	ctx := context.Background()
	store, kv := newStore()

	_ = kv.Set(ctx, "token", "garbage")
	_ = kv.Set(ctx, "cht_user", `{"_id":"u-5","email":"u5@example.com","role":"patient","token":"snap-token"}`)

	got, ok := store.Load(ctx)
	if !ok {
		t.Fatal("snapshot should load when token is garbled")
	}
	if got.SubjectID != "u-5" {
		t.Errorf("unexpected identity: %+v", got)
	}
}

func TestCredentialStore_ClearRemovesEveryFormat(t *testing.T) {
	ctx := context.Background()

	populate := map[string]func(kv *storage.MemoryKV){
		"current only": func(kv *storage.MemoryKV) {
			_ = kv.Set(ctx, "token", mocks.PatientToken())
			_ = kv.Set(ctx, "cht_token", mocks.PatientToken())
			_ = kv.Set(ctx, "cht_user", `{"_id":"u-1","role":"patient"}`)
		},
		"legacy only": func(kv *storage.MemoryKV) {
			_ = kv.Set(ctx, "userInfo", `{"_id":"u-1","role":"patient","token":"x"}`)
		},
		"both": func(kv *storage.MemoryKV) {
			_ = kv.Set(ctx, "token", mocks.PatientToken())
			_ = kv.Set(ctx, "userInfo", `{"_id":"u-1","role":"patient","token":"x"}`)
		},
	}

	for name, fill := range populate {
		t.Run(name, func(t *testing.T) {
			store, kv := newStore()
			fill(kv)

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if _, ok := store.Load(ctx); ok {
				t.Error("load after clear must return no identity")
			}
			if store.HasAny(ctx) {
				t.Error("clear left credential material behind")
			}
			if kv.Len() != 0 {
				t.Errorf("clear left %d keys behind", kv.Len())
			}
		})
	}
}

func TestCredentialStore_SaveFailsLoudly(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	kv.SetErr = errors.New("quota exceeded")
	store := storage.NewCredentialStore(kv, services.NewTokenCodec())

	if err := store.Save(ctx, patientIdentity()); err == nil {
		t.Fatal("save must surface storage failure")
	}
}

func TestCredentialStore_LoadDegradesOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	kv.GetErr = errors.New("storage unavailable")
	store := storage.NewCredentialStore(kv, services.NewTokenCodec())

	if _, ok := store.Load(ctx); ok {
		t.Error("load must degrade to no identity, not error out")
	}
	if store.HasAny(ctx) {
		t.Error("HasAny must degrade to false")
	}
}
