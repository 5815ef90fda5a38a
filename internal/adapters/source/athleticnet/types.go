package athleticnet

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// bioResponse is the athlete-bio payload. Cross country results arrive under
// resultsXC with the event encoded as a distance; track results arrive under
// resultsTF keyed by event id, with names resolved through eventsTF.
type bioResponse struct {
	ResultsTF []bioResult        `json:"resultsTF"`
	ResultsXC []bioResult        `json:"resultsXC"`
	EventsTF  []bioEvent         `json:"eventsTF"`
	Meets     map[string]bioMeet `json:"meets"`
}

type bioResult struct {
	IDResult     int64    `json:"IDResult"`
	MeetID       int64    `json:"MeetID"`
	EventID      int      `json:"EventID"`
	Event        string   `json:"Event"`
	Distance     int      `json:"Distance"`
	Result       string   `json:"Result"`
	Place        flexInt  `json:"Place"`
	SeasonID     int      `json:"SeasonID"`
	ResultDate   string   `json:"ResultDate"`
	MeetDate     string   `json:"MeetDate"`
	MeetName     string   `json:"MeetName"`
	PersonalBest flexFlag `json:"PersonalBest"`
	SeasonBest   flexFlag `json:"SeasonBest"`
}

type bioEvent struct {
	IDEvent int    `json:"IDEvent"`
	Event   string `json:"Event"`
}

type bioMeet struct {
	IDMeet   int64  `json:"IDMeet"`
	MeetName string `json:"MeetName"`
	EndDate  string `json:"EndDate"`
}

// flexFlag decodes the site's record hints, which arrive as booleans on some
// endpoints and as confidence-like numbers on others.
type flexFlag struct {
	model.SourceFlag
}

func (f *flexFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil // tolerate junk; flag stays unset
		}
		f.Bool = b
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return nil
		}
		f.Score = n
	}
	return nil
}

// flexInt decodes integers that some endpoints serialize as strings.
type flexInt int

func (p *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			*p = flexInt(n)
		}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	*p = flexInt(n)
	return nil
}
