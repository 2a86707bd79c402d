package commands

import (
	"testing"
	"transcript-scraper/internal/transcript"

	"github.com/stretchr/testify/require"
)

const savedPage = `<html>
<head><title>Room - 2016-03-03 (page 1 of 2)</title></head>
<body>
<div id="transcript">
	<div class="monologue user-10">
		<div class="signature"><a href="/users/10/alice" title="alice">alice</a></div>
		<div class="messages">
			<div class="message" id="message-100">
				<div class="content">hello <b>world</b></div>
				<span class="flash"><span class="stars"><span class="times">2</span></span></span>
			</div>
		</div>
	</div>
</div>
<div class="pager">
	<span class="page-numbers current">00:00 - 13:00</span>
	<a href="/transcript/1/2016/3/3/13-24"><span class="page-numbers">13:00 - 00:00</span></a>
</div>
</body>
</html>`

func TestParsePage(t *testing.T) {
	out, err := parsePage(savedPage, "/transcript/1/2016/3/3", "")
	require.NoError(t, err)

	require.Equal(t, "/transcript/1/2016/3/3", out.URL)
	require.Equal(t, "Room - 2016-03-03 (page 1 of 2)", out.Title)
	require.Equal(t, []transcript.MessageBlock{{
		Speaker: transcript.Speaker{Name: "alice", ID: 10},
		Messages: []transcript.Message{
			{ID: 100, Content: "hello <b>world</b>", Stars: 2},
		},
	}}, out.Blocks)
	require.Equal(t, "/transcript/1/2016/3/3/13-24", out.Next)
	require.Equal(t, "continue", out.Stop)

	out, err = parsePage(savedPage, "", "/transcript/1/2016/3/3/13-24")
	require.NoError(t, err)
	require.Empty(t, out.Next)
	require.Equal(t, "boundary", out.Stop)
}

func TestParsePageMalformed(t *testing.T) {
	_, err := parsePage(`<div class="monologue"><div class="messages"></div></div>`, "", "")
	require.Error(t, err)
}
