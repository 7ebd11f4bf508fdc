package fixture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/validation"
)

func TestRandomName(t *testing.T) {
	name := RandomName("test-ap")

	assert.True(t, strings.HasPrefix(name, "test-ap-"), name)
	assert.Len(t, name, len("test-ap-")+randomSuffixLength)
	assert.Empty(t, validation.IsDNS1123Label(name))
	assert.NotEqual(t, name, RandomName("test-ap"))
}

func TestRandomName_Normalizes(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"trailing dash", "test-"},
		{"upper case", "Test-VS"},
		{"empty", ""},
		{"too long", strings.Repeat("a", 80)},
		{"underscore", "test_gw"},
		{"space", "Test Gateway"},
		{"dot", "test.gw"},
		{"only invalid", "__"},
		{"unicode", "tést-gw"},
		{"invalid at cut", strings.Repeat("a", 53) + "_b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := RandomName(tt.prefix)
			assert.LessOrEqual(t, len(name), maxNameLength)
			assert.Empty(t, validation.IsDNS1123Label(name), name)
		})
	}
}

func TestRandomName_ReplacesInvalidCharacters(t *testing.T) {
	name := RandomName("Test_GW.v1")
	assert.True(t, strings.HasPrefix(name, "test-gw-v1-"), name)
}

func TestNamespaceName(t *testing.T) {
	ns := NamespaceName()
	assert.True(t, strings.HasPrefix(ns, namespacePrefix+"-"))
	assert.Empty(t, validation.IsDNS1123Label(ns))
}

func TestLoadManifest(t *testing.T) {
	obj, err := LoadManifest(AuthorizationPolicyManifest, "ns-1", "ap-1")
	require.NoError(t, err)
	assert.Equal(t, KindAuthorizationPolicy, obj.GetKind())
	assert.Equal(t, "ap-1", obj.GetName())
	assert.Equal(t, "ns-1", obj.GetNamespace())

	ns, err := LoadManifest(NamespaceManifest, "", "ns-2")
	require.NoError(t, err)
	assert.Empty(t, ns.GetNamespace())

	_, err = LoadManifest("nope.yaml", "", "x")
	assert.Error(t, err)
}

func TestResourceFor(t *testing.T) {
	for _, kind := range MeshKinds() {
		gvr, err := ResourceFor(DefaultGroupVersions[kind].WithKind(kind))
		require.NoError(t, err, kind)
		assert.NotEmpty(t, gvr.Group, kind)
		assert.Equal(t, "v1", gvr.Version, kind)
	}

	plural, err := Plural(KindServiceEntry)
	require.NoError(t, err)
	assert.Equal(t, "serviceentries", plural)

	_, err = Plural("Ingress")
	assert.Error(t, err)
}
