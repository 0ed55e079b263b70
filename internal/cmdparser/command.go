// Package cmdparser turns a tokenized command line (see package
// tokenstream) into one of the typed Command values the library actor and
// UI understand. Derivation is done with hand-written match tables per
// variant rather than code generation; the behavioral contract is what
// matters (spec §4.2, design note "Parser derivation").
package cmdparser

import (
	"strconv"
	"strings"

	"github.com/hedgepod-dev/hedgepod/internal/tokenstream"
)

// Command is implemented by every parseable command value. The method
// exists only to close the type set; callers type-switch on the concrete
// type to act on it.
type Command interface {
	isCommand()
}

// MarkStatus is the status a "mark" command assigns to episodes.
type MarkStatus string

const (
	MarkNotStarted MarkStatus = "not-started"
	MarkStarted    MarkStatus = "started"
	MarkFinished   MarkStatus = "finished"
	MarkError      MarkStatus = "error"
)

var markStatusNames = map[string]MarkStatus{
	"not-started": MarkNotStarted,
	"notstarted":  MarkNotStarted,
	"started":     MarkStarted,
	"finished":    MarkFinished,
	"error":       MarkError,
}

func parseMarkStatus(s *tokenstream.Stream) (MarkStatus, *tokenstream.Stream, error) {
	tok, ok := s.Take()
	if !ok {
		return "", s, errTokenRequired("status")
	}
	if tok.Kind != tokenstream.Text {
		return "", s, errTokenParse(tok, "status", "")
	}
	if st, ok := markStatusNames[strings.ToLower(tok.Value)]; ok {
		return st, s, nil
	}
	return "", s, errTokenParse(tok, "status", "")
}

// Command value types, one per variant named in spec §6's command surface.
// Variants with no interesting fields are zero-size structs.

type ScrollCommand struct {
	Amount int
	Page   bool
}

func (ScrollCommand) isCommand() {}

type MapCommand struct {
	Key     string
	Mapping string
}

func (MapCommand) isCommand() {}

type UnmapCommand struct{ Key string }

func (UnmapCommand) isCommand() {}

type ThemeCommand struct{ Name string }

func (ThemeCommand) isCommand() {}

type ExecCommand struct{ Path string }

func (ExecCommand) isCommand() {}

type ConfirmCommand struct{ Inner Command }

func (ConfirmCommand) isCommand() {}

type VolumeCommand struct {
	Delta   *float64
	Set     *float64
	Mute    bool
	Unmute  bool
}

func (VolumeCommand) isCommand() {}

type PlayCurrentCommand struct{}

func (PlayCurrentCommand) isCommand() {}

type PlaybackCommand struct {
	Pause  bool
	Resume bool
	Toggle bool
	Stop   bool
	SeekBy *float64
}

func (PlaybackCommand) isCommand() {}

type FinishCommand struct{}

func (FinishCommand) isCommand() {}

type SetFeedEnabledCommand struct {
	FeedID  *uint64
	Enabled bool
}

func (SetFeedEnabledCommand) isCommand() {}

type QuitCommand struct{}

func (QuitCommand) isCommand() {}

type FocusCommand struct{ Target string }

func (FocusCommand) isCommand() {}

type LogCommand struct{}

func (LogCommand) isCommand() {}

type SetCommand struct {
	Option string
	Value  string
}

func (SetCommand) isCommand() {}

type AddCommand struct{ Source string }

func (AddCommand) isCommand() {}

type AddGroupCommand struct{ Name string }

func (AddGroupCommand) isCommand() {}

type SetGroupCommand struct {
	Group string
	Feed  uint64
}

func (SetGroupCommand) isCommand() {}

type UnsetGroupCommand struct{ Feed uint64 }

func (UnsetGroupCommand) isCommand() {}

type PlaceGroupCommand struct {
	Group    string
	Position int
}

func (PlaceGroupCommand) isCommand() {}

type DeleteCommand struct{}

func (DeleteCommand) isCommand() {}

type ReverseCommand struct{}

func (ReverseCommand) isCommand() {}

type RenameCommand struct{ Name string }

func (RenameCommand) isCommand() {}

type UpdateCommand struct{ This bool }

func (UpdateCommand) isCommand() {}

type AddArchiveCommand struct{ URL string }

func (AddArchiveCommand) isCommand() {}

type MarkCommand struct {
	Status    MarkStatus
	UpdateAll bool
	Condition *MarkStatus
}

func (MarkCommand) isCommand() {}

type HideCommand struct{}

func (HideCommand) isCommand() {}

type UnhideCommand struct{}

func (UnhideCommand) isCommand() {}

type SearchCommand struct{ Terms string }

func (SearchCommand) isCommand() {}

type SearchAddCommand struct{ Index uint8 }

func (SearchAddCommand) isCommand() {}

type OpenLinkCommand struct{}

func (OpenLinkCommand) isCommand() {}

type RepeatCommandCommand struct{}

func (RepeatCommandCommand) isCommand() {}

type RefreshCommand struct{}

func (RefreshCommand) isCommand() {}

type ChainCommand struct{ Commands []Command }

func (ChainCommand) isCommand() {}

type IfCommand struct {
	Condition MarkStatus
	Then      Command
}

func (IfCommand) isCommand() {}

// MsgSeverity is the level a "msg" command reports at.
type MsgSeverity string

const (
	MsgInfo  MsgSeverity = "info"
	MsgWarn  MsgSeverity = "warn"
	MsgError MsgSeverity = "error"
)

type MsgCommand struct {
	Severity MsgSeverity
	Text     string
}

func (MsgCommand) isCommand() {}

// variantEntry binds one or more accepted spellings to the field parser
// invoked once the tag token has been consumed.
type variantEntry struct {
	names []string
	parse func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error)
}

var registry []variantEntry

func register(names []string, parse func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error)) {
	registry = append(registry, variantEntry{names: names, parse: parse})
}

func lookup(name string) *variantEntry {
	name = strings.ToLower(name)
	for i := range registry {
		for _, n := range registry[i].names {
			if n == name {
				return &registry[i]
			}
		}
	}
	return nil
}

func init() {
	register([]string{"scroll"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		amount, rest, err := SignedInt(s, 32)
		if err != nil {
			return nil, s, err
		}
		page := false
		rest, err = ConsumeAttributes(rest, []AttrSpec{
			{Name: "page", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { page = true; return s, nil }},
		})
		if err != nil {
			return nil, s, err
		}
		return ScrollCommand{Amount: int(amount), Page: page}, rest, nil
	})

	register([]string{"map"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		key, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		mapping, rest2, err := String(rest)
		if err != nil {
			return nil, s, err
		}
		return MapCommand{Key: key, Mapping: mapping}, rest2, nil
	})

	register([]string{"unmap"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		key, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		return UnmapCommand{Key: key}, rest, nil
	})

	register([]string{"theme"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		name, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		return ThemeCommand{Name: name}, rest, nil
	})

	register([]string{"exec"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		path, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		return ExecCommand{Path: path}, rest, nil
	})

	register([]string{"confirm"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		inner, rest, err := parseCommandValue(s)
		if err != nil {
			return nil, s, err
		}
		return ConfirmCommand{Inner: inner}, rest, nil
	})

	register([]string{"volume"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		v := VolumeCommand{}
		delta, rest, err := Optional(s, Float64)
		if err != nil {
			return nil, s, err
		}
		v.Delta = delta
		rest, err = ConsumeAttributes(rest, []AttrSpec{
			{Name: "mute", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { v.Mute = true; return s, nil }},
			{Name: "unmute", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { v.Unmute = true; return s, nil }},
			{Name: "set", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) {
				f, rest, err := Float64(s)
				if err != nil {
					return s, err
				}
				v.Set = &f
				return rest, nil
			}},
		})
		if err != nil {
			return nil, s, err
		}
		return v, rest, nil
	})

	register([]string{"play-current"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return PlayCurrentCommand{}, s, nil
	})

	register([]string{"playback"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		p := PlaybackCommand{}
		rest, err := ConsumeAttributes(s, []AttrSpec{
			{Name: "pause", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { p.Pause = true; return s, nil }},
			{Name: "resume", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { p.Resume = true; return s, nil }},
			{Name: "toggle", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { p.Toggle = true; return s, nil }},
			{Name: "stop", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { p.Stop = true; return s, nil }},
			{Name: "seek", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) {
				f, rest, err := Float64(s)
				if err != nil {
					return s, err
				}
				p.SeekBy = &f
				return rest, nil
			}},
		})
		if err != nil {
			return nil, s, err
		}
		return p, rest, nil
	})

	register([]string{"finish"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return FinishCommand{}, s, nil
	})

	register([]string{"set-feed-enabled"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return parseSetFeedEnabled(s, true)
	})
	register([]string{"enable"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return SetFeedEnabledCommand{Enabled: true}, s, nil
	})
	register([]string{"disable"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return SetFeedEnabledCommand{Enabled: false}, s, nil
	})

	register([]string{"quit", "q"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return QuitCommand{}, s, nil
	})

	register([]string{"focus"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		target, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		return FocusCommand{Target: target}, rest, nil
	})

	register([]string{"log"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return LogCommand{}, s, nil
	})

	register([]string{"set"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		opt, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		val, rest2, err := String(rest)
		if err != nil {
			return nil, s, err
		}
		return SetCommand{Option: opt, Value: val}, rest2, nil
	})

	register([]string{"add"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		src, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		return AddCommand{Source: src}, rest, nil
	})

	register([]string{"add-group"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		name, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		return AddGroupCommand{Name: name}, rest, nil
	})

	register([]string{"set-group"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		group, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		feed, rest2, err := UnsignedInt(rest, 64)
		if err != nil {
			return nil, s, err
		}
		return SetGroupCommand{Group: group, Feed: feed}, rest2, nil
	})

	register([]string{"unset-group"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		feed, rest, err := UnsignedInt(s, 64)
		if err != nil {
			return nil, s, err
		}
		return UnsetGroupCommand{Feed: feed}, rest, nil
	})

	register([]string{"place-group"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		group, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		pos, rest2, err := SignedInt(rest, 32)
		if err != nil {
			return nil, s, err
		}
		return PlaceGroupCommand{Group: group, Position: int(pos)}, rest2, nil
	})

	register([]string{"delete"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return DeleteCommand{}, s, nil
	})

	register([]string{"reverse"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return ReverseCommand{}, s, nil
	})

	register([]string{"rename"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		name, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		return RenameCommand{Name: name}, rest, nil
	})

	register([]string{"update"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		this := false
		rest, err := ConsumeAttributes(s, []AttrSpec{
			{Name: "this", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { this = true; return s, nil }},
		})
		if err != nil {
			return nil, s, err
		}
		return UpdateCommand{This: this}, rest, nil
	})

	register([]string{"add-archive"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		url, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		return AddArchiveCommand{URL: url}, rest, nil
	})

	register([]string{"mark"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		status, rest, err := parseMarkStatus(s)
		if err != nil {
			return nil, s, err
		}
		m := MarkCommand{Status: status}
		rest, err = ConsumeAttributes(rest, []AttrSpec{
			{Name: "all", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { m.UpdateAll = true; return s, nil }},
			{Name: "if", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) {
				cond, rest, err := parseMarkStatus(s)
				if err != nil {
					return s, err
				}
				m.Condition = &cond
				return rest, nil
			}},
		})
		if err != nil {
			return nil, s, err
		}
		return m, rest, nil
	})

	register([]string{"hide"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return HideCommand{}, s, nil
	})
	register([]string{"unhide"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return UnhideCommand{}, s, nil
	})

	register([]string{"search", "s"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		var terms []string
		for {
			tok, ok := s.Peek()
			if !ok || tok.Kind != tokenstream.Text {
				break
			}
			s.Take()
			terms = append(terms, tok.Value)
		}
		return SearchCommand{Terms: strings.Join(terms, " ")}, s, nil
	})

	register([]string{"search-add"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		idx, rest, err := Uint8(s)
		if err != nil {
			return nil, s, err
		}
		return SearchAddCommand{Index: idx}, rest, nil
	})

	register([]string{"open-link"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return OpenLinkCommand{}, s, nil
	})

	register([]string{"repeat-command"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return RepeatCommandCommand{}, s, nil
	})

	register([]string{"refresh"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		return RefreshCommand{}, s, nil
	})

	register([]string{"chain"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		var cmds []Command
		for {
			tok, ok := s.Peek()
			if !ok || tok.Kind != tokenstream.OpenParen {
				break
			}
			group, err := s.TakeGroup()
			if err != nil {
				return nil, s, err
			}
			cmd, err := parseWithinGroup(group)
			if err != nil {
				return nil, s, err
			}
			cmds = append(cmds, cmd)
		}
		return ChainCommand{Commands: cmds}, s, nil
	})

	register([]string{"if"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		condGroup, err := s.TakeGroup()
		if err != nil {
			return nil, s, err
		}
		cond, rest, err := parseMarkStatus(condGroup)
		if err != nil {
			return nil, s, err
		}
		_ = rest
		thenGroup, err := s.TakeGroup()
		if err != nil {
			return nil, s, err
		}
		then, err := parseWithinGroup(thenGroup)
		if err != nil {
			return nil, s, err
		}
		return IfCommand{Condition: cond, Then: then}, s, nil
	})

	register([]string{"msg"}, func(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
		text, rest, err := String(s)
		if err != nil {
			return nil, s, err
		}
		m := MsgCommand{Severity: MsgInfo, Text: text}
		rest, err = ConsumeAttributes(rest, []AttrSpec{
			{Name: "info", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { m.Severity = MsgInfo; return s, nil }},
			{Name: "warn", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { m.Severity = MsgWarn; return s, nil }},
			{Name: "error", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { m.Severity = MsgError; return s, nil }},
		})
		if err != nil {
			return nil, s, err
		}
		return m, rest, nil
	})
}

func parseSetFeedEnabled(s *tokenstream.Stream, _ bool) (Command, *tokenstream.Stream, error) {
	id, rest, err := Optional(s, func(s *tokenstream.Stream) (uint64, *tokenstream.Stream, error) {
		return UnsignedInt(s, 64)
	})
	if err != nil {
		return nil, s, err
	}
	enabled := true
	rest, err = ConsumeAttributes(rest, []AttrSpec{
		{Name: "disable", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) { enabled = false; return s, nil }},
	})
	if err != nil {
		return nil, s, err
	}
	return SetFeedEnabledCommand{FeedID: id, Enabled: enabled}, rest, nil
}

// parseCommandValue parses one full command (tag + fields) from the stream,
// used when a variant's field is itself a command (e.g. "confirm").
func parseCommandValue(s *tokenstream.Stream) (Command, *tokenstream.Stream, error) {
	tok, ok := s.Take()
	if !ok {
		return nil, s, errTokenRequired("command")
	}
	if tok.Kind != tokenstream.Text {
		return nil, s, errTokenParse(tok, "command", "")
	}
	entry := lookup(tok.Value)
	if entry == nil {
		return nil, s, errTokenParse(tok, "command", "unknown command")
	}
	return entry.parse(s)
}

// parseWithinGroup parses a full command from the tokens of an already
// extracted parenthesized group, requiring the group be fully consumed.
func parseWithinGroup(group *tokenstream.Stream) (Command, error) {
	cmd, rest, err := parseCommandValue(group)
	if err != nil {
		return nil, err
	}
	if !rest.AtEnd() {
		tok, _ := rest.Peek()
		return nil, errUnexpectedToken(tok)
	}
	return cmd, nil
}

// Parse tokenizes and parses one full command line, per spec §4.2/§6.
func Parse(line string) (Command, error) {
	s := tokenstream.Lex(line)
	if s.AtEnd() {
		return nil, errTokenRequired("command")
	}
	cmd, rest, err := parseCommandValue(s)
	if err != nil {
		return nil, err
	}
	if !rest.AtEnd() {
		tok, _ := rest.Peek()
		return nil, errUnexpectedToken(tok)
	}
	return cmd, nil
}

// FileParseError is returned by the command-file reader (spec §6 "Command
// files"): it wraps a parse failure with the 1-based line number at which
// it occurred.
type FileParseError struct {
	Line int
	Err  error
}

func (e *FileParseError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

func (e *FileParseError) Unwrap() error { return e.Err }
