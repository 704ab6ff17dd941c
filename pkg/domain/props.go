package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ComponentPropsCollection maps a rendering uid to the value its loader produced,
// or to a ComponentPropsError when the loader failed.
type ComponentPropsCollection map[string]any

// ComponentPropsError is stored in place of props when a loader fails.
type ComponentPropsError struct {
	Error string `json:"error"`
}

// PropsError returns the failure message recorded for uid, if any.
func (c ComponentPropsCollection) PropsError(uid string) (string, bool) {
	switch v := c[uid].(type) {
	case ComponentPropsError:
		return v.Error, true
	case *ComponentPropsError:
		if v != nil {
			return v.Error, true
		}
	}
	return "", false
}

// DecodeProps decodes the props loaded for uid into out, which must be a pointer.
// Struct fields are matched by their json tags.
// It returns ErrPropsNotFound when nothing was loaded for uid and ErrPropsFailed
// when the loader failed.
func DecodeProps(c ComponentPropsCollection, uid string, out any) error {
	value, ok := c[uid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPropsNotFound, uid)
	}
	if msg, failed := c.PropsError(uid); failed {
		return fmt.Errorf("%w: %s", ErrPropsFailed, msg)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build props decoder: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("failed to decode props for %s: %w", uid, err)
	}
	return nil
}
