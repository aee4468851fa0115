package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-archive/internal/models"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

func newRelationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAwardRepositoryCreateWithRecipients(t *testing.T) {
	db, mock, cleanup := newRelationRepoMock(t)
	defer cleanup()
	repo := NewAwardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO awards").
		WithArgs(sqlmock.AnyArg(), "Model Teacher", "municipal", "", "2020-09-10", "honor", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO award_recipients").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "t1", 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO award_recipients").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "t2", 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	award := &models.Award{AwardName: "Model Teacher", Level: models.LevelMunicipal, AwardDate: "2020-09-10", AwardType: "honor"}
	require.NoError(t, repo.CreateTx(context.Background(), tx, award))
	recipients := []models.AwardRecipient{
		{AwardID: award.ID, TeacherID: "t1", Rank: 1},
		{AwardID: award.ID, TeacherID: "t2", Rank: 2},
	}
	require.NoError(t, repo.InsertRecipientsTx(context.Background(), tx, recipients))
	require.NoError(t, tx.Commit())

	assert.NotEmpty(t, recipients[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardRepositoryListRecipients(t *testing.T) {
	db, mock, cleanup := newRelationRepoMock(t)
	defer cleanup()
	repo := NewAwardRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ar.award_id = ?\nORDER BY ar.rank ASC")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "award_id", "teacher_id", "rank", "created_at", "updated_at", "teacher_name"}).
			AddRow("r1", "a1", "t1", 1, now, now, "Li Hua").
			AddRow("r2", "a1", "t2", 2, now, now, "Wang Fang"))

	items, err := repo.ListRecipients(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Wang Fang", items[1].TeacherName)
	assert.Equal(t, 2, items[1].Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepositoryInsertMembersRequiresSingleLeader(t *testing.T) {
	db, mock, cleanup := newRelationRepoMock(t)
	defer cleanup()
	repo := NewProjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.InsertMembersTx(context.Background(), tx, []models.ProjectMember{
		{ProjectID: "p1", TeacherID: "t1", IsLeader: true, MemberRank: 1},
		{ProjectID: "p1", TeacherID: "t2", IsLeader: true, MemberRank: 2},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = repo.InsertMembersTx(context.Background(), tx, []models.ProjectMember{
		{ProjectID: "p1", TeacherID: "t1", IsLeader: true, MemberRank: 2},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = repo.InsertMembersTx(context.Background(), tx, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMentoringRepositoryListByTeacherMatchesBothRoles(t *testing.T) {
	db, mock, cleanup := newRelationRepoMock(t)
	defer cleanup()
	repo := NewMentoringRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.teacher_id = ? OR m.apprentice_id = ?")).
		WithArgs("t1", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "apprentice_id", "start_date", "end_date", "achievements", "created_at", "updated_at", "mentor_name", "apprentice_name"}).
			AddRow("m1", "t1", "t2", "2019-09-01", "", "", now, now, "Li Hua", "Wang Fang").
			AddRow("m2", "t3", "t1", "2008-09-01", "2010-07-01", "", now, now, "Zhao Lei", "Li Hua"))

	items, err := repo.ListByTeacher(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "t2", items[0].ApprenticeID)
	assert.Equal(t, "Zhao Lei", items[1].MentorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
