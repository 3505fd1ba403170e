package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"generated/image/foo.bimage", "generated/image/foo.bimage"},
		{`models\monsters\soldier.bmd6model`, "models/monsters/soldier.bmd6model"},
		{"art/wall.bimage_lodgroup=2", "art/wall.bimage"},
		{"art/wall.tga$streamed_group=7", "art/wall.tga_streamed"},
		{"sound/bank.snd_streamdb=1", "sound/bank.snd"},
		{"textures/rock.tga_mip2", "textures/rock.tga"},
		{"a<b>c:d|e?f*g\"h#i.txt", "a_b_c_d_e_f_g_h_i.txt"},
		{"/../etc//passwd", "etc/passwd"},
		{"", "file_00000007.dat"},
		{"..", "file_00000007.dat"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeName(tt.raw, 7))
		})
	}
}

func TestNormalizeNameDirectoryDots(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pack.v2/file_name", NormalizeName("pack.v2/file_name", 0))
}
