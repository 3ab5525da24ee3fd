package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/cyclence/internal/db"
	"github.com/emilianohg/cyclence/internal/models"
	"github.com/emilianohg/cyclence/internal/recurrence"
)

var today = civil.Date{Year: 2026, Month: time.October, Day: 19}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenFile(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(database))
	return database
}

func seedUsers(t *testing.T, database *sql.DB, emails ...string) {
	t.Helper()
	users := NewUserRepo(database)
	for _, email := range emails {
		_, err := users.GetOrCreate(email, "")
		require.NoError(t, err)
	}
}

func newTask(t *testing.T, name string) *recurrence.Task {
	t.Helper()
	task, err := recurrence.NewTask(recurrence.Options{
		Name:        name,
		Length:      12,
		FirstDue:    today.AddDays(-1),
		Points:      120,
		DecayLength: 3,
		Tags:        []string{"kitchen", "weekly"},
		Notes:       "OK then",
	}, today)
	require.NoError(t, err)
	return task
}

func TestTaskRepo_CreateAndGet(t *testing.T) {
	database := newTestDB(t)
	seedUsers(t, database, "josh@example.com")
	repo := NewTaskRepo(database)

	task := newTask(t, "Eat Ham")
	require.NoError(t, repo.Create(task, "josh@example.com"))

	got, err := repo.GetByID(task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.Name, got.Name)
	assert.Equal(t, task.Length, got.Length)
	assert.Equal(t, task.FirstDue, got.FirstDue)
	assert.Equal(t, task.DecayLength, got.DecayLength)
	assert.Equal(t, task.Points, got.Points)
	assert.Equal(t, []string{"kitchen", "weekly"}, got.Tags)
	assert.Equal(t, "OK then", got.Notes)
	assert.Empty(t, got.Completions())

	missing, err := repo.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := repo.Exists(task.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTaskRepo_UsersAndList(t *testing.T) {
	database := newTestDB(t)
	seedUsers(t, database, "josh@example.com", "ann@example.com")
	repo := NewTaskRepo(database)

	ham := newTask(t, "Eat Ham")
	spam := newTask(t, "Eat Spam")
	require.NoError(t, repo.Create(ham, "josh@example.com"))
	require.NoError(t, repo.Create(spam, "ann@example.com"))
	require.NoError(t, repo.AddUser(spam.ID, "josh@example.com"))

	tasks, err := repo.ListForUser("josh@example.com")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	users, err := repo.Users(spam.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann@example.com", "josh@example.com"}, users)

	require.NoError(t, repo.RemoveUser(spam.ID, "josh@example.com"))
	has, err := repo.HasUser(spam.ID, "josh@example.com")
	require.NoError(t, err)
	assert.False(t, has)

	tasks, err = repo.ListForUser("ann@example.com")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Eat Spam", tasks[0].Name)
}

func TestTaskRepo_UpdateAndDelete(t *testing.T) {
	database := newTestDB(t)
	seedUsers(t, database, "josh@example.com")
	repo := NewTaskRepo(database)

	task := newTask(t, "Eat Ham")
	require.NoError(t, repo.Create(task, "josh@example.com"))

	task.Name = "Eat Eggs"
	task.Points = 30
	task.Tags = []string{"breakfast"}
	require.NoError(t, repo.Update(task))

	got, err := repo.GetByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eat Eggs", got.Name)
	assert.Equal(t, 30, got.Points)
	assert.Equal(t, []string{"breakfast"}, got.Tags)

	require.NoError(t, repo.Delete(task.ID))
	got, err = repo.GetByID(task.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCompletionRepo(t *testing.T) {
	database := newTestDB(t)
	seedUsers(t, database, "josh@example.com")
	tasks := NewTaskRepo(database)
	completions := NewCompletionRepo(database)

	task := newTask(t, "Eat Ham")
	require.NoError(t, tasks.Create(task, "josh@example.com"))

	now := time.Date(2026, time.October, 19, 8, 15, 0, 0, time.UTC)
	c, err := task.Complete("josh@example.com", civil.Date{}, now)
	require.NoError(t, err)
	require.NoError(t, completions.Append(task.ID, c))

	err = completions.Append(task.ID, c)
	assert.ErrorIs(t, err, recurrence.ErrAlreadyCompleted)

	stored, err := completions.ListByTask(task.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, today, stored[0].CompletedOn)
	assert.Equal(t, 80, stored[0].PointsEarned)
	assert.Equal(t, 1, stored[0].DaysLate)
	assert.True(t, now.Equal(stored[0].RecordedOn))

	reloaded, err := tasks.GetByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, today.AddDays(12), reloaded.DueDate())

	total, err := completions.TotalPoints("josh@example.com")
	require.NoError(t, err)
	assert.Equal(t, 80, total)
}

func TestUserRepo(t *testing.T) {
	database := newTestDB(t)
	repo := NewUserRepo(database)

	u, err := repo.GetOrCreate("josh@example.com", "Josh")
	require.NoError(t, err)
	assert.Equal(t, "Josh", u.Name)

	// empty name keeps the stored one
	u, err = repo.GetOrCreate("josh@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Josh", u.DisplayName())

	missing, err := repo.GetByEmail("ann@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFriendRepo(t *testing.T) {
	database := newTestDB(t)
	seedUsers(t, database, "josh@example.com", "ann@example.com", "bob@example.com")
	repo := NewFriendRepo(database)

	require.NoError(t, repo.Add("josh@example.com", "ann@example.com"))
	require.NoError(t, repo.Add("ann@example.com", "josh@example.com"))

	ok, err := repo.AreFriends("ann@example.com", "josh@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AreFriends("bob@example.com", "josh@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	friends, err := repo.ListFriends("josh@example.com")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "ann@example.com", friends[0].Email)
}

func TestNotificationRepo(t *testing.T) {
	database := newTestDB(t)
	seedUsers(t, database, "josh@example.com")
	tasks := NewTaskRepo(database)
	repo := NewNotificationRepo(database)

	task := newTask(t, "Eat Ham")
	require.NoError(t, tasks.Create(task, "josh@example.com"))

	morning := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	first, err := repo.Create(models.Notification{
		UserEmail: "josh@example.com",
		Kind:      models.KindReminder,
		Message:   "Eat Ham is due",
		TaskID:    &task.ID,
		CreatedAt: morning,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = repo.Create(models.Notification{
		UserEmail: "josh@example.com",
		Kind:      models.KindMessage,
		Message:   "hello",
		CreatedAt: morning.Add(time.Hour),
	})
	require.NoError(t, err)

	notes, err := repo.ListForUser("josh@example.com")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "hello", notes[0].Message)
	assert.Nil(t, notes[0].TaskID)
	require.NotNil(t, notes[1].TaskID)
	assert.Equal(t, task.ID, *notes[1].TaskID)

	sent, err := repo.SentSince("josh@example.com", task.ID, models.KindReminder, morning.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, sent)
	sent, err = repo.SentSince("josh@example.com", task.ID, models.KindReminder, morning.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, sent)

	got, err := repo.GetByID(first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.KindReminder, got.Kind)

	require.NoError(t, repo.Delete(first.ID))
	got, err = repo.GetByID(first.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
