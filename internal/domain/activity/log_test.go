package activity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradehub/gradehub-core/internal/domain/record"
)

func entryAt(id string, student string, action string, at time.Time) Entry {
	e, err := NewEntry(id, record.StudentID("stu-"+student), action, "", nil, at)
	if err != nil {
		panic(err)
	}
	return e
}

func TestNewEntry_Validation(t *testing.T) {
	_, err := NewEntry("e1", "", ActionLogin, "", nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidStudentID)

	_, err = NewEntry("e1", "stu-1", "", "", nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestNewEntry_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+6", 6*3600)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, loc)

	e, err := NewEntry("e1", "stu-1", ActionLogin, "", nil, at)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.True(t, e.Timestamp.Equal(at))
}

func TestLog_Append_EnforcesRetentionCap(t *testing.T) {
	var log Log
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < MaxEntries+25; i++ {
		log.Append(entryAt(fmt.Sprintf("e%d", i), "1", ActionLogin, base.Add(time.Duration(i)*time.Second)))
	}

	require.Len(t, log.Entries, MaxEntries)
	// Oldest evicted first: the first surviving entry is e25.
	assert.Equal(t, "e25", log.Entries[0].ID)
	assert.Equal(t, fmt.Sprintf("e%d", MaxEntries+24), log.Entries[len(log.Entries)-1].ID)
}

func TestLog_CountFor(t *testing.T) {
	var log Log
	now := time.Now()
	log.Append(entryAt("e1", "1", ActionLogin, now))
	log.Append(entryAt("e2", "2", ActionLogin, now))
	log.Append(entryAt("e3", "1", ActionCourseEnrolled, now))

	assert.Equal(t, 2, log.CountFor("stu-1"))
	assert.Equal(t, 1, log.CountFor("stu-2"))
	assert.Equal(t, 0, log.CountFor("stu-3"))
}

func TestLog_SummaryFor(t *testing.T) {
	var log Log
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	log.Append(entryAt("e1", "1", ActionLogin, base))
	log.Append(entryAt("e2", "1", ActionCourseEnrolled, base.Add(time.Minute)))
	log.Append(entryAt("e3", "2", ActionLogin, base.Add(2*time.Minute)))
	log.Append(entryAt("e4", "1", ActionLogin, base.Add(3*time.Minute)))

	s := log.SummaryFor("stu-1")

	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, map[string]int{ActionLogin: 2, ActionCourseEnrolled: 1}, s.CountsByAction)
	require.Len(t, s.Recent, 3)
	assert.Equal(t, "e4", s.Recent[0].ID, "newest first")
	assert.Equal(t, "e1", s.Recent[2].ID)
}

func TestLog_SummaryFor_TimestampTiesBreakByInsertionOrder(t *testing.T) {
	var log Log
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	log.Append(entryAt("first", "1", ActionLogin, at))
	log.Append(entryAt("second", "1", ActionLogin, at))
	log.Append(entryAt("third", "1", ActionLogin, at))

	s := log.SummaryFor("stu-1")

	require.Len(t, s.Recent, 3)
	assert.Equal(t, "third", s.Recent[0].ID, "later insertions rank first within the same instant")
	assert.Equal(t, "second", s.Recent[1].ID)
	assert.Equal(t, "first", s.Recent[2].ID)
}

func TestLog_SummaryFor_RecentLimit(t *testing.T) {
	var log Log
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < RecentLimit+10; i++ {
		log.Append(entryAt(fmt.Sprintf("e%d", i), "1", ActionLogin, base.Add(time.Duration(i)*time.Second)))
	}

	s := log.SummaryFor("stu-1")
	assert.Equal(t, RecentLimit+10, s.TotalCount)
	require.Len(t, s.Recent, RecentLimit)
	assert.Equal(t, fmt.Sprintf("e%d", RecentLimit+9), s.Recent[0].ID)
}

func TestLog_SummaryFor_UnknownStudent(t *testing.T) {
	var log Log
	s := log.SummaryFor("stu-9")

	assert.Zero(t, s.TotalCount)
	assert.Empty(t, s.Recent)
	assert.NotNil(t, s.CountsByAction)
}
