package endian

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkEngineIsLittleEndian(t *testing.T) {
	engine := ChunkEngine()

	buf := engine.AppendUint32(nil, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
	require.Equal(t, uint32(0x01020304), engine.Uint32(buf))

	wide := make([]byte, 8)
	engine.PutUint64(wide, 0x3FF0000000000000)
	require.Equal(t, byte(0x3F), wide[7])
	require.Equal(t, byte(0x00), wide[0])
}
