package interactions

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *Interaction
		wantErr bool
	}{
		{
			name: "json_ping",
			body: `{"application_id":"123","type":1}`,
			want: &Interaction{ApplicationID: "123", Type: 1},
		},
		{
			name: "json_command",
			body: `{"application_id":"123","type":2,"guild_id":"456","data":{"name":"foo","type":1,` +
				`"options":[{"name":"bar","type":1,"options":[{"name":"n","type":4,"value":42}]}]}}`,
			want: &Interaction{
				ApplicationID: "123",
				Type:          2,
				GuildID:       "456",
				Data: InteractionData{
					Name: "foo",
					Type: 1,
					Options: []InteractionOption{
						{Name: "bar", Type: 1, Options: []InteractionOption{{Name: "n", Type: 4, Value: "42"}}},
					},
				},
			},
		},
		{
			name: "json_unknown_fields",
			body: `{"application_id":"123","type":2,"token":"secret","member":{"nick":"x"}}`,
			want: &Interaction{ApplicationID: "123", Type: 2},
		},
		{
			name:    "json_null",
			body:    "null",
			wantErr: true,
		},
		{
			name: "form",
			body: "application_id=123&type=1",
			want: &Interaction{ApplicationID: "123"},
		},
		{
			name: "form_without_application_id",
			body: "foo=bar",
			want: &Interaction{},
		},
		{
			name: "empty_body",
			want: &Interaction{},
		},
		{
			name: "truncated_json",
			body: `{"application_id":"123"`,
			want: &Interaction{},
		},
		{
			name:    "invalid_form_escape",
			body:    "application_id=%zz",
			wantErr: true,
		},
		{
			name:    "invalid_form_separator",
			body:    "application_id=123;type=1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload(zerolog.Nop(), []byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedInput) {
				t.Errorf("ParsePayload() error = %v, want %v", err, ErrMalformedInput)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePayload() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOptionValueUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    OptionValue
		wantErr bool
	}{
		{
			name: "string",
			json: `"hello"`,
			want: "hello",
		},
		{
			name: "integer",
			json: "42",
			want: "42",
		},
		{
			name: "float",
			json: "1.5",
			want: "1.5",
		},
		{
			name: "bool",
			json: "true",
			want: "true",
		},
		{
			name: "null",
			json: "null",
		},
		{
			name:    "object",
			json:    `{"a":1}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got OptionValue
			err := got.UnmarshalJSON([]byte(tt.json))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("UnmarshalJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
