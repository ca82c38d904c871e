package output

import (
	"encoding/json"

	"github.com/tcpview/tcpview/internal/pipeline"
	"github.com/tcpview/tcpview/pkg/model"
)

type jsonSet struct {
	pipeline.DisplaySet
	Sort  *jsonSort `json:"sort,omitempty"`
	Error string    `json:"error,omitempty"`
}

type jsonSort struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// JSONView is the wire form of a display set, shared by list --json and the
// HTTP API.
func JSONView(set pipeline.DisplaySet) any {
	v := jsonSet{DisplaySet: set}
	if set.Rows == nil {
		v.Rows = []model.DisplayRow{}
	}
	if set.Sort.Active {
		v.Sort = &jsonSort{Column: set.Sort.Column.Key(), Desc: set.Sort.Desc}
	}
	if set.Err != nil {
		v.Error = set.Err.Error()
	}
	return v
}

func ToJSON(set pipeline.DisplaySet) (string, error) {
	data, err := json.MarshalIndent(JSONView(set), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
