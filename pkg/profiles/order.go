package profiles

import (
	"bytes"
	"encoding/json"
)

// orderedCacheKeys walks the registry document and returns the
// profile.info_cache keys in the order they appear in the file. Returns
// nil if the document does not have the expected shape.
func orderedCacheKeys(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	if !openObject(dec) {
		return nil
	}
	for dec.More() {
		key, ok := nextKey(dec)
		if !ok {
			return nil
		}
		if key == "profile" {
			return cacheKeysInProfile(dec)
		}
		if skipValue(dec) != nil {
			return nil
		}
	}
	return nil
}

func cacheKeysInProfile(dec *json.Decoder) []string {
	if !openObject(dec) {
		return nil
	}
	for dec.More() {
		key, ok := nextKey(dec)
		if !ok {
			return nil
		}
		if key == "info_cache" {
			return objectKeys(dec)
		}
		if skipValue(dec) != nil {
			return nil
		}
	}
	return nil
}

// objectKeys consumes an object value and returns its keys in order
func objectKeys(dec *json.Decoder) []string {
	if !openObject(dec) {
		return nil
	}
	var keys []string
	for dec.More() {
		key, ok := nextKey(dec)
		if !ok {
			return nil
		}
		keys = append(keys, key)
		if skipValue(dec) != nil {
			return nil
		}
	}
	return keys
}

// openObject consumes an opening brace
func openObject(dec *json.Decoder) bool {
	tok, err := dec.Token()
	if err != nil {
		return false
	}
	delim, ok := tok.(json.Delim)
	return ok && delim == '{'
}

// nextKey consumes an object key
func nextKey(dec *json.Decoder) (string, bool) {
	tok, err := dec.Token()
	if err != nil {
		return "", false
	}
	key, ok := tok.(string)
	return key, ok
}

// skipValue consumes one JSON value of any shape
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); ok && (delim == '{' || delim == '[') {
		for dec.More() {
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		_, err = dec.Token()
		return err
	}
	return nil
}
