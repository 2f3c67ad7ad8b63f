package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	connSchema := compile("player_connection_request.schema.json")
	createSchema := compile("create_lobby.schema.json")
	joinSchema := compile("join_lobby_request.schema.json")
	posSchema := compile("update_player_position.schema.json")
	itemSchema := compile("update_item_state.schema.json")
	rollStartSchema := compile("dice_roll_start.schema.json")
	rollResultSchema := compile("dice_roll_result.schema.json")

	var conn any
	_ = json.Unmarshal([]byte(`{
	  "type":"PLAYER_CONNECTION_REQUEST",
	  "userId":"user-1",
	  "username":"Thorin"
	}`), &conn)
	validate(connSchema, conn)

	var create any
	_ = json.Unmarshal([]byte(`{
	  "type":"CREATE_LOBBY",
	  "lobbyName":"The Prancing Pony",
	  "maxPlayers":4
	}`), &create)
	validate(createSchema, create)

	var join any
	_ = json.Unmarshal([]byte(`{
	  "type":"JOIN_LOBBY_REQUEST",
	  "lobbyId":"ab12cd"
	}`), &join)
	validate(joinSchema, join)

	var pos any
	_ = json.Unmarshal([]byte(`{
	  "type":"UPDATE_PLAYER_POSITION",
	  "lobbyId":"ab12cd",
	  "position":[1.5,0,-4.25]
	}`), &pos)
	validate(posSchema, pos)

	var item any
	_ = json.Unmarshal([]byte(`{
	  "type":"UPDATE_ITEM_STATE",
	  "itemId":"chest-1",
	  "itemType":"chest",
	  "state":{"isOpen":true},
	  "position":[4.5,0,-2]
	}`), &item)
	validate(itemSchema, item)

	var rollStart any
	_ = json.Unmarshal([]byte(`{
	  "type":"DICE_ROLL_START",
	  "args":{
	    "title":"Pick the lock",
	    "diceType":"d20",
	    "difficultyClass":15,
	    "modifiers":[{"name":"Dexterity","value":3}],
	    "skillCheck":{"ability":"dexterity","skill":"sleight of hand"}
	  }
	}`), &rollStart)
	validate(rollStartSchema, rollStart)

	var rollResult any
	_ = json.Unmarshal([]byte(`{
	  "type":"DICE_ROLL_RESULT",
	  "result":17,
	  "success":true
	}`), &rollResult)
	validate(rollResultSchema, rollResult)
}

func TestSchemas_RejectBadSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	posSchema := compile("update_player_position.schema.json")
	var pos any
	_ = json.Unmarshal([]byte(`{
	  "type":"UPDATE_PLAYER_POSITION",
	  "lobbyId":"ab12cd",
	  "position":[1.5,0]
	}`), &pos)
	if err := posSchema.Validate(pos); err == nil {
		t.Fatalf("expected 2-component position rejected")
	}

	rollStartSchema := compile("dice_roll_start.schema.json")
	var roll any
	_ = json.Unmarshal([]byte(`{
	  "type":"DICE_ROLL_START",
	  "args":{"diceType":"d7"}
	}`), &roll)
	if err := rollStartSchema.Validate(roll); err == nil {
		t.Fatalf("expected unknown dice type rejected")
	}
}
