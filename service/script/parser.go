package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/simpool/simpool/model"
	"github.com/viant/parsly"
)

// haltKeyword is the script keyword marking the simulation's terminal
// timestep.
const haltKeyword = "EXIT"

// Parse parses raw script content into a validated plan. Each non-empty
// line is either `<timestamp> <label> S|T` or `<timestamp> EXIT`; exactly
// one EXIT line is required.
func Parse(data []byte) (*model.Plan, error) {
	var actions []model.Action
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		action, err := parseLine([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("script: line %d: %w", i+1, err)
		}
		actions = append(actions, *action)
	}
	plan, err := model.NewPlan(actions)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	return plan, nil
}

func parseLine(input []byte) (*model.Action, error) {
	cursor := parsly.NewCursor("", input, 0)
	action := &model.Action{}

	// Match the timestamp
	matched := cursor.MatchAfterOptional(whitespaceToken, timestampToken)
	if matched.Code != timestampToken.Code {
		return nil, cursor.NewError(timestampToken)
	}
	timestamp, err := strconv.Atoi(matched.Text(cursor))
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}
	action.Timestamp = timestamp

	// Match the label or the EXIT keyword
	matched = cursor.MatchAfterOptional(whitespaceToken, labelToken)
	if matched.Code != labelToken.Code {
		return nil, cursor.NewError(labelToken)
	}
	word := matched.Text(cursor)

	if word == haltKeyword {
		action.Label = haltKeyword
		action.Kind = model.ActionHaltAll
		return action, expectEnd(cursor)
	}
	action.Label = word

	// Match the command character
	matched = cursor.MatchAfterOptional(whitespaceToken, commandToken)
	if matched.Code != commandToken.Code {
		return nil, cursor.NewError(commandToken)
	}
	switch matched.Text(cursor) {
	case "S":
		action.Kind = model.ActionSpawn
	case "T":
		action.Kind = model.ActionTerminate
	}
	return action, expectEnd(cursor)
}

func expectEnd(cursor *parsly.Cursor) error {
	cursor.MatchOne(whitespaceToken)
	if cursor.Pos < cursor.InputSize {
		return fmt.Errorf("unexpected trailing content %q", string(cursor.Input[cursor.Pos:]))
	}
	return nil
}
