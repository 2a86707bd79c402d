package roster

import (
	"testing"
	"transcript-scraper/internal/transcript"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	alice := transcript.Speaker{Name: "alice", ID: 10}
	feeds := transcript.Speaker{Name: "Feeds", ID: -2}

	segments := []transcript.Segment{
		{
			URL: "/transcript/1/2016/3/3",
			Blocks: []transcript.MessageBlock{
				{Speaker: alice, Messages: []transcript.Message{
					{ID: 100, Stars: 1},
					{ID: 101, IsEdited: true},
				}},
				{Speaker: feeds, Messages: []transcript.Message{{ID: 102}}},
			},
		},
		{
			URL: "/transcript/1/2016/3/4",
			Blocks: []transcript.MessageBlock{
				{Speaker: feeds, Messages: []transcript.Message{{ID: 200, IsDeleted: true}}},
				{Speaker: transcript.Speaker{Name: "alice_renamed", ID: 10}, Messages: []transcript.Message{
					{ID: 201, Stars: 3},
				}},
			},
		},
	}

	expected := []Participant{
		{
			Speaker:      transcript.Speaker{Name: "alice_renamed", ID: 10},
			Names:        []string{"alice", "alice_renamed"},
			Blocks:       2,
			Messages:     3,
			Edited:       1,
			Stars:        4,
			FirstMessage: 100,
			LastMessage:  201,
		},
		{
			Speaker:      feeds,
			Names:        []string{"Feeds"},
			Blocks:       2,
			Messages:     2,
			Deleted:      1,
			FirstMessage: 102,
			LastMessage:  200,
		},
	}

	diff := cmp.Diff(expected, Build(segments))
	require.Empty(t, diff)
}

func TestBuildTieBreak(t *testing.T) {
	segments := []transcript.Segment{{
		Blocks: []transcript.MessageBlock{
			{Speaker: transcript.Speaker{Name: "b", ID: 7}, Messages: []transcript.Message{{ID: 1}}},
			{Speaker: transcript.Speaker{Name: "a", ID: 3}, Messages: []transcript.Message{{ID: 2}}},
		},
	}}
	participants := Build(segments)
	require.Len(t, participants, 2)
	require.Equal(t, int64(3), participants[0].ID)
	require.Equal(t, int64(7), participants[1].ID)
}

func TestBuildEmpty(t *testing.T) {
	require.Empty(t, Build(nil))
}

func TestMatch(t *testing.T) {
	participants := []Participant{
		{Speaker: transcript.Speaker{Name: "new name", ID: 1}, Names: []string{"Old Name", "new name"}},
		{Speaker: transcript.Speaker{Name: "bob", ID: 2}, Names: []string{"bob"}},
	}
	require.Equal(t, participants, Match(participants, nil))

	matched := Match(participants, []string{"oldname"})
	require.Len(t, matched, 1)
	require.Equal(t, int64(1), matched[0].ID)

	require.Empty(t, Match(participants, []string{"carol"}))
}
