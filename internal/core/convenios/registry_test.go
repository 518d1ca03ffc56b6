package convenios

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// registryCSV está em ISO8859-1, como os arquivos de cadastro reais
// (\xc7\xc3 = "ÇÃ", \xda = "Ú").
const registryCSV = "001;UNIMED FEDERA\xc7\xc3O;direto;1\n" +
	"002;BRADESCO SA\xdaDE;direto;1\n" +
	"003;AMIL;associacao;1\n" +
	"004;GOLDEN CROSS;direto;0\n"

func TestLoadRegistry(t *testing.T) {
	t.Parallel()

	registry, err := Load(strings.NewReader(registryCSV))
	require.NoError(t, err)
	// entradas inativas ficam de fora do índice
	assert.Equal(t, 3, registry.Len())
}

func TestResolveExact(t *testing.T) {
	t.Parallel()

	registry, err := Load(strings.NewReader(registryCSV))
	require.NoError(t, err)

	convenio, kind := registry.Resolve("Unimed Federação")
	assert.Equal(t, MatchExata, kind)
	assert.Equal(t, "001", convenio.Code)
	assert.Equal(t, "UNIMED FEDERACAO", convenio.NormalizedName)
}

func TestResolveFuzzy(t *testing.T) {
	t.Parallel()

	registry, err := Load(strings.NewReader(registryCSV))
	require.NoError(t, err)

	convenio, kind := registry.Resolve("BRADESCO SAUDE S/A")
	assert.Equal(t, MatchFuzzy, kind)
	assert.Equal(t, "002", convenio.Code)

	// a resolução fuzzy devolve a entrada com a grafia normalizada original
	convenio, kind = registry.Resolve("UNIMED FEDERACAO RS")
	assert.Equal(t, MatchFuzzy, kind)
	assert.Equal(t, "001", convenio.Code)
	assert.Equal(t, "UNIMED FEDERACAO", convenio.NormalizedName)
}

func TestResolveInactiveNotFound(t *testing.T) {
	t.Parallel()

	registry, err := Load(strings.NewReader("001;GOLDEN CROSS;direto;0\n"))
	require.NoError(t, err)

	_, kind := registry.Resolve("GOLDEN CROSS")
	assert.Equal(t, MatchNaoEncontada, kind)
}

func TestCanonicalName(t *testing.T) {
	t.Parallel()

	registry, err := Load(strings.NewReader(registryCSV))
	require.NoError(t, err)

	name, ok := registry.CanonicalName("amil (inativo)")
	assert.True(t, ok)
	assert.Equal(t, "AMIL", name)

	_, ok = registry.CanonicalName("")
	assert.False(t, ok)
}
