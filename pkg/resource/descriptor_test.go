package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerops/towerctl/pkg/api"
)

func TestField_Coerce(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		raw     string
		want    any
		wantErr bool
	}{
		{name: "string passthrough", field: Field{Name: "name"}, raw: "demo", want: "demo"},
		{name: "bool true", field: Field{Name: "scm_clean", Kind: KindBool}, raw: "true", want: true},
		{name: "bool garbage", field: Field{Name: "scm_clean", Kind: KindBool}, raw: "maybe", wantErr: true},
		{name: "int", field: Field{Name: "forks", Kind: KindInt}, raw: "5", want: 5},
		{name: "int garbage", field: Field{Name: "forks", Kind: KindInt}, raw: "five", wantErr: true},
		{
			name: "mapped choice translates",
			field: Field{Name: "scm_type", Kind: KindMapped, Choices: []Choice{
				{Input: "manual", Value: ""},
				{Input: "git", Value: "git"},
			}},
			raw:  "manual",
			want: "",
		},
		{
			name: "mapped choice rejects unknown",
			field: Field{Name: "scm_type", Kind: KindMapped, Choices: []Choice{
				{Input: "git", Value: "git"},
			}},
			raw:     "cvs",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.Coerce(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, api.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptor_BuildPayload(t *testing.T) {
	desc := &Descriptor{
		Name:     "widget",
		Endpoint: "/widgets/",
		Fields: []Field{
			{Name: "name", Required: true, Unique: true},
			{Name: "count", Kind: KindInt},
			{Name: "mode", Default: "auto"},
		},
	}

	t.Run("create applies defaults and coercion", func(t *testing.T) {
		payload, err := desc.BuildPayload(map[string]string{"name": "w1", "count": "3"}, true)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "w1", "count": 3, "mode": "auto"}, payload)
	})

	t.Run("create rejects missing required field", func(t *testing.T) {
		_, err := desc.BuildPayload(map[string]string{"count": "3"}, true)
		require.Error(t, err)
		assert.True(t, api.IsValidation(err))
	})

	t.Run("modify sends only supplied fields", func(t *testing.T) {
		payload, err := desc.BuildPayload(map[string]string{"count": "7"}, false)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"count": 7}, payload)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		_, err := desc.BuildPayload(map[string]string{"color": "red"}, false)
		require.Error(t, err)
		assert.True(t, api.IsValidation(err))
	})
}

func TestDescriptor_IdentityFields(t *testing.T) {
	t.Run("explicit tuple wins", func(t *testing.T) {
		desc := Credential()
		assert.Equal(t, []string{"user", "team", "kind", "name"}, desc.IdentityFields())
	})

	t.Run("unique fields are the fallback", func(t *testing.T) {
		desc := Project()
		assert.Equal(t, []string{"name"}, desc.IdentityFields())
	})
}

func TestBuiltin_Registry(t *testing.T) {
	reg := Builtin()
	for _, name := range []string{"credential", "project", "job_template", "job"} {
		d, ok := reg[name]
		require.True(t, ok, "missing descriptor %s", name)
		assert.Equal(t, name, d.Name)
		assert.NotEmpty(t, d.Endpoint)
	}
	assert.Equal(t, "/projects/42/", reg["project"].ItemPath(42))
}

func TestProject_CreateEndpoint(t *testing.T) {
	desc := Project()
	require.NotNil(t, desc.CreateEndpoint)

	assert.Equal(t, "/organizations/1/projects/", desc.CreateEndpoint(map[string]any{"organization": 1}))
	assert.Equal(t, "/projects/", desc.CreateEndpoint(map[string]any{}))
}
