package menu

import (
	"fmt"
	"strconv"
	"strings"

	"greenleaf/internal/models"
)

// ScreenKind identifies one of the four triage screens.
type ScreenKind int

const (
	ScreenMain ScreenKind = iota
	ScreenTypeList
	ScreenLeadDetail
	ScreenHistory
)

func (s ScreenKind) String() string {
	switch s {
	case ScreenMain:
		return "main"
	case ScreenTypeList:
		return "type_list"
	case ScreenLeadDetail:
		return "lead_detail"
	case ScreenHistory:
		return "history"
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

// State is a position in the menu. Kind is set for TypeList,
// LeadID for LeadDetail.
type State struct {
	Screen ScreenKind
	Kind   models.LeadKind
	LeadID int64
}

func MainMenu() State                  { return State{Screen: ScreenMain} }
func TypeList(k models.LeadKind) State { return State{Screen: ScreenTypeList, Kind: k} }
func LeadDetail(id int64) State        { return State{Screen: ScreenLeadDetail, LeadID: id} }
func History() State                   { return State{Screen: ScreenHistory} }

type EventType int

const (
	EventOpenMain EventType = iota
	EventOpenTypeList
	EventRefresh
	EventOpenHistory
	EventOpenDetail
	EventMarkCompleted
	EventBack
)

// Event is an operator action. Back carries the state it was pressed on,
// since chat transports do not keep menu state between updates.
type Event struct {
	Type   EventType
	Kind   models.LeadKind
	LeadID int64
	From   State
}

func OpenMain() Event                      { return Event{Type: EventOpenMain} }
func OpenTypeList(k models.LeadKind) Event { return Event{Type: EventOpenTypeList, Kind: k} }
func Refresh(k models.LeadKind) Event      { return Event{Type: EventRefresh, Kind: k} }
func OpenHistory() Event                   { return Event{Type: EventOpenHistory} }
func OpenDetail(id int64) Event            { return Event{Type: EventOpenDetail, LeadID: id} }
func MarkCompleted(id int64) Event         { return Event{Type: EventMarkCompleted, LeadID: id} }
func Back(from State) Event                { return Event{Type: EventBack, From: from} }

// Encode renders the event as Telegram callback data (at most 64 bytes).
func (e Event) Encode() string {
	switch e.Type {
	case EventOpenTypeList:
		return "list:" + string(e.Kind)
	case EventRefresh:
		return "refresh:" + string(e.Kind)
	case EventOpenHistory:
		return "history"
	case EventOpenDetail:
		return "lead:" + strconv.FormatInt(e.LeadID, 10)
	case EventMarkCompleted:
		return "done:" + strconv.FormatInt(e.LeadID, 10)
	case EventBack:
		return "back:" + encodeState(e.From)
	default:
		return "menu"
	}
}

func encodeState(s State) string {
	switch s.Screen {
	case ScreenTypeList:
		return "list:" + string(s.Kind)
	case ScreenLeadDetail:
		return "lead:" + strconv.FormatInt(s.LeadID, 10)
	case ScreenHistory:
		return "history"
	default:
		return "menu"
	}
}

// ParseEvent is the inverse of Event.Encode.
func ParseEvent(data string) (Event, error) {
	data = strings.TrimSpace(data)
	if rest, ok := strings.CutPrefix(data, "back:"); ok {
		st, err := parseState(rest)
		if err != nil {
			return Event{}, err
		}
		return Back(st), nil
	}

	name, arg, _ := strings.Cut(data, ":")
	switch name {
	case "menu":
		return OpenMain(), nil
	case "history":
		return OpenHistory(), nil
	case "list", "refresh":
		k := models.LeadKind(arg)
		if !k.Valid() {
			return Event{}, fmt.Errorf("menu: unknown lead kind %q", arg)
		}
		if name == "list" {
			return OpenTypeList(k), nil
		}
		return Refresh(k), nil
	case "lead", "done":
		id, err := parseID(arg)
		if err != nil {
			return Event{}, err
		}
		if name == "lead" {
			return OpenDetail(id), nil
		}
		return MarkCompleted(id), nil
	}
	return Event{}, fmt.Errorf("menu: unknown action %q", data)
}

func parseState(s string) (State, error) {
	ev, err := ParseEvent(s)
	if err != nil {
		return State{}, err
	}
	switch ev.Type {
	case EventOpenMain:
		return MainMenu(), nil
	case EventOpenTypeList:
		return TypeList(ev.Kind), nil
	case EventOpenDetail:
		return LeadDetail(ev.LeadID), nil
	case EventOpenHistory:
		return History(), nil
	}
	return State{}, fmt.Errorf("menu: cannot go back from %q", s)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("menu: invalid lead id %q", s)
	}
	return id, nil
}
