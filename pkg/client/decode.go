package client

import "encoding/json"

func decodeResult(raw json.RawMessage, out interface{}) error {
	return json.Unmarshal(raw, out)
}
