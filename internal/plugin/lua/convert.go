package lua

import (
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keycase/internal/event"
	"github.com/dshills/keycase/internal/event/events"
)

// toLua converts a Go value to a Lua value. Unsupported types become nil.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case error:
		return lua.LString(val.Error())
	case []string:
		tbl := L.CreateTable(len(val), 0)
		for _, s := range val {
			tbl.Append(lua.LString(s))
		}
		return tbl
	case map[string]any:
		tbl := L.CreateTable(0, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tbl.RawSetString(k, toLua(L, val[k]))
		}
		return tbl
	default:
		return lua.LNil
	}
}

// eventPayload flattens a bus event into the table passed to on callbacks.
// Every payload carries the event's topic.
func eventPayload(ev any) map[string]any {
	p := make(map[string]any)
	if tp, ok := ev.(event.TopicProvider); ok {
		p["topic"] = string(tp.EventTopic())
	}

	switch e := ev.(type) {
	case events.SessionStarted:
		p["session"] = e.SessionID
		p["style"] = e.Style
		p["surface"] = e.SurfaceID
	case events.SessionEnded:
		p["session"] = e.SessionID
		p["style"] = e.Style
		p["reason"] = string(e.Reason)
		p["transformed"] = e.Transformed
	case events.Notification:
		p["message"] = e.Message
		p["error"] = e.Level == events.LevelError
	case events.ConfigReloaded:
		p["path"] = e.Path
		if e.Err != nil {
			p["error"] = e.Err.Error()
		}
	case events.BufferContentInserted:
		p["document"] = e.DocumentID
		p["offset"] = e.Offset
		p["text"] = e.Text
		p["origin"] = e.Origin.String()
	case events.BufferContentDeleted:
		p["document"] = e.DocumentID
		p["start"] = e.Start
		p["stop"] = e.End
		p["old_text"] = e.OldText
		p["origin"] = e.Origin.String()
	case events.BufferContentReplaced:
		p["document"] = e.DocumentID
		p["start"] = e.Start
		p["stop"] = e.End
		p["old_text"] = e.OldText
		p["text"] = e.NewText
		p["origin"] = e.Origin.String()
	case events.BufferSaved:
		p["document"] = e.DocumentID
		p["path"] = e.Path
		p["bytes"] = e.Bytes
	}
	return p
}
