package core

import (
	"context"
	"errors"
	"testing"

	"graficaos.service/internal/core/model"
)

func setupTestSweepService() (*SweepService, *mockPunchRepo) {
	repo := newMockPunchRepo()
	repo.addUser("u1", "Ana Souza", "ana@graficaos.com")
	repo.addUser("u2", "Bruno Lima", "bruno@graficaos.com")
	now := &fakeNow{t: civil(2025, 3, 10, 22, 0)}
	return NewSweepService(repo, newTestClock(now), 22), repo
}

func TestSweepService_Run_ClosesOpenRecords(t *testing.T) {
	svc, repo := setupTestSweepService()
	id := repo.seed(model.PunchRecord{UserID: "u1", Date: day(10), Entrada: ptr(civil(2025, 3, 10, 9, 0))})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Count != 1 || len(result.Users) != 1 {
		t.Fatalf("expected one closed record, got %+v", result)
	}
	if result.Users[0].Name != "Ana Souza" || result.Users[0].Email != "ana@graficaos.com" {
		t.Errorf("unexpected closed user %+v", result.Users[0])
	}

	rec := repo.records[id]
	if !rec.AutoClosed {
		t.Error("record should be flagged auto-closed")
	}
	if rec.Saida == nil || !rec.Saida.Equal(civil(2025, 3, 10, 22, 0)) {
		t.Errorf("saida should be 22:00 civil, got %v", rec.Saida)
	}
}

func TestSweepService_Run_SecondRunIsNoop(t *testing.T) {
	svc, repo := setupTestSweepService()
	repo.seed(model.PunchRecord{UserID: "u1", Date: day(10), Entrada: ptr(civil(2025, 3, 10, 9, 0))})
	repo.seed(model.PunchRecord{UserID: "u2", Date: day(10), Entrada: ptr(civil(2025, 3, 10, 8, 0)), Almoco: ptr(civil(2025, 3, 10, 12, 0))})

	first, err := svc.Run(context.Background())
	if err != nil || first.Count != 2 {
		t.Fatalf("first run should close 2, got %d, %v", first.Count, err)
	}

	second, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Count != 0 || len(second.Users) != 0 {
		t.Errorf("second run should close nothing, got %+v", second)
	}
}

func TestSweepService_Run_LeavesOtherRecordsAlone(t *testing.T) {
	svc, repo := setupTestSweepService()
	done := repo.seed(model.PunchRecord{UserID: "u1", Date: day(10), Entrada: ptr(civil(2025, 3, 10, 8, 0)), Saida: ptr(civil(2025, 3, 10, 17, 0))})
	yesterday := repo.seed(model.PunchRecord{UserID: "u2", Date: day(9), Entrada: ptr(civil(2025, 3, 9, 8, 0))})
	absent := repo.seed(model.PunchRecord{UserID: "u2", Date: day(10)})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("expected nothing closed, got %d", result.Count)
	}
	if !repo.records[done].Saida.Equal(civil(2025, 3, 10, 17, 0)) || repo.records[done].AutoClosed {
		t.Error("complete record must not change")
	}
	if repo.records[yesterday].Saida != nil || repo.records[absent].Saida != nil {
		t.Error("only today's open records are closed")
	}
}

func TestSweepService_CloseDay_SkipsEntradaAfterCutoff(t *testing.T) {
	svc, repo := setupTestSweepService()
	late := repo.seed(model.PunchRecord{UserID: "u1", Date: day(10), Entrada: ptr(civil(2025, 3, 10, 22, 30))})

	result, err := svc.CloseDay(context.Background(), day(10))
	if err != nil {
		t.Fatalf("CloseDay: %v", err)
	}
	if result.Count != 0 || repo.records[late].Saida != nil {
		t.Error("a journey that started after the cutoff must stay open")
	}
	if len(repo.autoCloseIDs) != 0 {
		t.Error("AutoClose should not be called with nothing to close")
	}
}

func TestSweepService_CloseDay_SkipsLunchAfterCutoff(t *testing.T) {
	svc, repo := setupTestSweepService()
	late := repo.seed(model.PunchRecord{
		UserID:  "u1",
		Date:    day(10),
		Entrada: ptr(civil(2025, 3, 10, 21, 0)),
		Almoco:  ptr(civil(2025, 3, 10, 22, 30)),
	})

	result, err := svc.CloseDay(context.Background(), day(10))
	if err != nil {
		t.Fatalf("CloseDay: %v", err)
	}
	if result.Count != 0 || repo.records[late].Saida != nil {
		t.Errorf("saida at 22:00 would precede almoco 22:30, got %+v", repo.records[late])
	}
}

func TestSweepService_Run_ReportsOnlyRecordsActuallyClosed(t *testing.T) {
	svc, repo := setupTestSweepService()
	raced := repo.seed(model.PunchRecord{UserID: "u1", Date: day(10), Entrada: ptr(civil(2025, 3, 10, 9, 0))})
	repo.seed(model.PunchRecord{UserID: "u2", Date: day(10), Entrada: ptr(civil(2025, 3, 10, 8, 0))})

	// u1 punches out between the open query and the bulk update.
	repo.beforeAutoClose = func() {
		saida := civil(2025, 3, 10, 21, 59)
		repo.records[raced].Saida = &saida
	}

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Count != 1 || len(result.Users) != 1 || result.Users[0].ID != "u2" {
		t.Fatalf("only u2 was closed, got %+v", result)
	}
	if repo.records[raced].AutoClosed {
		t.Error("the record closed by its owner must not be flagged auto-closed")
	}
}

func TestSweepService_Run_PersistenceFailure(t *testing.T) {
	svc, repo := setupTestSweepService()
	repo.seed(model.PunchRecord{UserID: "u1", Date: day(10), Entrada: ptr(civil(2025, 3, 10, 9, 0))})
	repo.autoCloseErr = errDBDown

	result, err := svc.Run(context.Background())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if result.Count != 0 || len(result.Users) != 0 {
		t.Errorf("a failed run reports nothing closed, got %+v", result)
	}
}
