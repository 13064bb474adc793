package events

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func Test_Store_AppendEvictsOldest(t *testing.T) {
	s := NewStore(DefaultCapacity)

	for i := 0; i < DefaultCapacity+1; i++ {
		s.Append(Record{WorkflowID: "wf", Message: fmt.Sprintf("m%d", i)})
	}

	all := s.All()
	require.Len(t, all, DefaultCapacity)
	require.Equal(t, "m1", all[0].Message)
	require.Equal(t, fmt.Sprintf("m%d", DefaultCapacity), all[len(all)-1].Message)
}

func Test_Store_EvictionKeepsInsertionOrder(t *testing.T) {
	s := NewStore(3)

	for i := 0; i < 5; i++ {
		s.Append(Record{Message: fmt.Sprintf("m%d", i)})
	}

	all := s.All()
	require.Len(t, all, 3)
	require.Equal(t, []string{"m2", "m3", "m4"}, []string{all[0].Message, all[1].Message, all[2].Message})
}

func Test_Store_ByWorkflowID(t *testing.T) {
	s := NewStore(10)

	s.Append(Record{WorkflowID: "a", Step: "createUser"})
	s.Append(Record{WorkflowID: "b", Step: "createUser"})
	s.Append(Record{WorkflowID: "a", Step: "createResume"})
	s.Append(Record{WorkflowID: "a", Step: "updateResume"})

	records := s.ByWorkflowID("a")
	require.Len(t, records, 3)
	require.Equal(t, "createUser", records[0].Step)
	require.Equal(t, "createResume", records[1].Step)
	require.Equal(t, "updateResume", records[2].Step)

	require.Empty(t, s.ByWorkflowID("missing"))
}

func Test_Store_AllReturnsCopy(t *testing.T) {
	s := NewStore(10)
	s.Append(Record{WorkflowID: "a", Message: "original"})

	all := s.All()
	all[0].Message = "mutated"

	require.Equal(t, "original", s.All()[0].Message)
}

func Test_Store_Stats(t *testing.T) {
	s := NewStore(100)

	steps := []string{"createUser", "createResume", "updateResume"}
	for _, id := range []string{"wf-1", "wf-2", "wf-3"} {
		for _, step := range steps {
			s.Append(Record{WorkflowID: id, Event: EventActivityStarted, Step: step})
			s.Append(Record{WorkflowID: id, Event: EventActivityCompleted, Step: step})
		}
	}

	stats := s.Stats()
	require.Equal(t, 18, stats.Total)
	require.Equal(t, []string{"wf-1", "wf-2", "wf-3"}, stats.WorkflowIDs)
}

func Test_Store_StatsSkipsEmptyWorkflowIDs(t *testing.T) {
	s := NewStore(10)

	s.Append(Record{WorkflowID: ""})
	s.Append(Record{WorkflowID: "a"})
	s.Append(Record{WorkflowID: "a"})

	stats := s.Stats()
	require.Equal(t, 3, stats.Total)
	require.Equal(t, []string{"a"}, stats.WorkflowIDs)
}
