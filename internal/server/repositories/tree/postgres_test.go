package tree

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mediaplanhq/campaignstore/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestListDays_OrderedByDay(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"day", "date"}).
		AddRow(1, "2026-03-01").
		AddRow(2, "2026-03-02")

	mock.ExpectQuery(`SELECT day, date FROM campaign_days WHERE campaign_id = \$1 ORDER BY day`).
		WithArgs("c1").
		WillReturnRows(rows)

	days, err := repo.ListDays(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 || days[0].Day != 1 || days[1].Date != "2026-03-02" {
		t.Fatalf("unexpected days: %+v", days)
	}
}

func TestListDays_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT day, date FROM campaign_days`).
		WillReturnError(errors.New("db is down"))

	_, err := repo.ListDays(context.Background(), "c1")
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListBlocks_DecodesFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "content_type", "fields", "media_ref"}).
		AddRow("b1", "post", `{"adCopy":"Buy now"}`, "").
		AddRow("b2", "story", "", "https://cdn.test/x.png")

	mock.ExpectQuery(`SELECT id, content_type, fields, media_ref FROM content_blocks WHERE campaign_id = \$1 AND day = \$2 ORDER BY position`).
		WithArgs("c1", 3).
		WillReturnRows(rows)

	blocks, err := repo.ListBlocks(context.Background(), "c1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
	if blocks[0].Fields["adCopy"] != "Buy now" {
		t.Fatalf("unexpected fields: %+v", blocks[0].Fields)
	}
	if blocks[1].Fields != nil || blocks[1].MediaRef != "https://cdn.test/x.png" {
		t.Fatalf("unexpected block: %+v", blocks[1])
	}
}

func TestListBlocks_BadFieldsJSON(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "content_type", "fields", "media_ref"}).
		AddRow("b1", "post", `{broken`, "")

	mock.ExpectQuery(`SELECT id, content_type, fields, media_ref FROM content_blocks`).
		WithArgs("c1", 1).
		WillReturnRows(rows)

	_, err := repo.ListBlocks(context.Background(), "c1", 1)
	if err == nil || !regexp.MustCompile(`parse block b1 fields`).MatchString(err.Error()) {
		t.Fatalf("expected fields parse error, got %v", err)
	}
}

func TestInsertBlockOp_MarshalsFields(t *testing.T) {
	op, err := InsertBlockOp("c1", 2, 5, &models.ContentBlock{
		ID:          "b1",
		ContentType: "post",
		Fields:      map[string]any{"tone": "upbeat"},
		MediaRef:    "https://cdn.test/x.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{"c1", 2, "b1", 5, "post", `{"tone":"upbeat"}`, "https://cdn.test/x.png"}
	if len(op.Args) != len(want) {
		t.Fatalf("unexpected args: %+v", op.Args)
	}
	for i := range want {
		if op.Args[i] != want[i] {
			t.Fatalf("arg %d: want %v, got %v", i, want[i], op.Args[i])
		}
	}
}

func TestInsertBlockOp_NilFieldsStoredEmpty(t *testing.T) {
	op, err := InsertBlockOp("c1", 1, 0, &models.ContentBlock{ID: "b1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Args[5] != "" {
		t.Fatalf("want empty fields column, got %v", op.Args[5])
	}
}

func TestDeleteOps(t *testing.T) {
	dayOp := DeleteDayOp("c1", 2)
	if len(dayOp.Args) != 2 || dayOp.Args[1] != 2 {
		t.Fatalf("unexpected day op: %+v", dayOp)
	}
	blockOp := DeleteBlockOp("c1", 2, "b1")
	if len(blockOp.Args) != 3 || blockOp.Args[2] != "b1" {
		t.Fatalf("unexpected block op: %+v", blockOp)
	}
}
