package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/keido/slouchd/internal/adapters/repository"
	"github.com/keido/slouchd/internal/domain/model"
)

func episode(id string, startedAt time.Time) model.Episode {
	return model.Episode{ID: id, StartedAt: startedAt}
}

func TestSQLiteStore_Begin(t *testing.T) {
	Convey("Given an episode store", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer db.Close()

		store := repository.NewWithDB(db)
		ctx := context.Background()
		startedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		Convey("When a new episode opens", func() {
			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO episodes (id, started_at) VALUES (?, ?)`)).
				WithArgs("ep-1", startedAt).
				WillReturnResult(sqlmock.NewResult(1, 1))

			err := store.Begin(ctx, episode("ep-1", startedAt))

			Convey("Then the row is inserted", func() {
				So(err, ShouldBeNil)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the insert fails", func() {
			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO episodes`)).
				WillReturnError(errors.New("disk I/O error"))

			err := store.Begin(ctx, episode("ep-1", startedAt))

			Convey("Then the error carries the query sentinel", func() {
				So(errors.Is(err, repository.ErrQuery), ShouldBeTrue)
			})
		})
	})
}

func TestSQLiteStore_Finish(t *testing.T) {
	Convey("Given an episode store", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer db.Close()

		store := repository.NewWithDB(db)
		ctx := context.Background()
		endedAt := time.Date(2026, 3, 1, 9, 1, 0, 0, time.UTC)

		Convey("When an episode closes", func() {
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE episodes SET ended_at = ?, peak_delta = ?, ticks = ? WHERE id = ?`)).
				WithArgs(endedAt, 17.5, 42, "ep-1").
				WillReturnResult(sqlmock.NewResult(0, 1))

			err := store.Finish(ctx, "ep-1", endedAt, 17.5, 42)

			Convey("Then the row is updated with the final stats", func() {
				So(err, ShouldBeNil)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the update fails", func() {
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE episodes`)).
				WillReturnError(errors.New("database is locked"))

			err := store.Finish(ctx, "ep-1", endedAt, 17.5, 42)

			Convey("Then the error carries the query sentinel", func() {
				So(errors.Is(err, repository.ErrQuery), ShouldBeTrue)
			})
		})
	})
}

func TestSQLiteStore_Recent(t *testing.T) {
	Convey("Given an episode store with history", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer db.Close()

		store := repository.NewWithDB(db)
		ctx := context.Background()

		first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		second := first.Add(5 * time.Minute)

		Convey("When listing recent episodes", func() {
			rows := sqlmock.NewRows([]string{"id", "started_at", "ended_at", "peak_delta", "ticks"}).
				AddRow("ep-2", second, nil, 22.0, 80).
				AddRow("ep-1", first, first.Add(40*time.Second), 13.5, 31)

			mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, started_at, ended_at, peak_delta, ticks`)).
				WithArgs(2).
				WillReturnRows(rows)

			episodes, err := store.Recent(ctx, 2)

			Convey("Then open episodes come back unended", func() {
				So(err, ShouldBeNil)
				So(episodes, ShouldHaveLength, 2)

				So(episodes[0].ID, ShouldEqual, "ep-2")
				So(episodes[0].Ended, ShouldBeFalse)
				So(episodes[0].PeakDelta, ShouldEqual, 22.0)

				So(episodes[1].ID, ShouldEqual, "ep-1")
				So(episodes[1].Ended, ShouldBeTrue)
				So(episodes[1].EndedAt, ShouldEqual, first.Add(40*time.Second))
				So(episodes[1].Ticks, ShouldEqual, 31)
			})
		})

		Convey("When the query fails", func() {
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, started_at`)).
				WillReturnError(errors.New("no such table: episodes"))

			_, err := store.Recent(ctx, 10)

			Convey("Then the error carries the query sentinel", func() {
				So(errors.Is(err, repository.ErrQuery), ShouldBeTrue)
			})
		})
	})
}

func TestDisabledStore(t *testing.T) {
	Convey("Given the disabled store", t, func() {
		store := repository.Disabled{}
		ctx := context.Background()

		Convey("Then every operation is a silent no-op", func() {
			So(store.Begin(ctx, episode("ep-1", time.Now())), ShouldBeNil)
			So(store.Finish(ctx, "ep-1", time.Now(), 1.0, 1), ShouldBeNil)

			episodes, err := store.Recent(ctx, 10)
			So(err, ShouldBeNil)
			So(episodes, ShouldBeNil)
			So(store.Close(), ShouldBeNil)
		})
	})
}
