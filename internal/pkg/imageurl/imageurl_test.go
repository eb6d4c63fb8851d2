package imageurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drive file view link",
			in:   "https://drive.google.com/file/d/1AbC_dEf-123/view?usp=sharing",
			want: "https://drive.google.com/thumbnail?id=1AbC_dEf-123&sz=w1000",
		},
		{
			name: "drive open link",
			in:   "https://drive.google.com/open?id=1AbC",
			want: "https://drive.google.com/thumbnail?id=1AbC&sz=w1000",
		},
		{
			name: "drive folder stays",
			in:   "https://drive.google.com/drive/folders/xyz",
			want: "https://drive.google.com/drive/folders/xyz",
		},
		{
			name: "dropbox preview",
			in:   "https://www.dropbox.com/s/abc123/shirt.jpg?dl=0",
			want: "https://www.dropbox.com/s/abc123/shirt.jpg?raw=1",
		},
		{
			name: "imgur page",
			in:   "https://imgur.com/aB3dE7q",
			want: "https://i.imgur.com/aB3dE7q.jpg",
		},
		{
			name: "imgur album stays",
			in:   "https://imgur.com/a/aB3dE7q",
			want: "https://imgur.com/a/aB3dE7q",
		},
		{
			name: "github blob",
			in:   "https://github.com/acme/assets/blob/main/img/tee.png",
			want: "https://raw.githubusercontent.com/acme/assets/main/img/tee.png",
		},
		{
			name: "unknown host passes through",
			in:   "https://cdn.shop.test/p/1.webp",
			want: "https://cdn.shop.test/p/1.webp",
		},
		{
			name: "relative path passes through",
			in:   "/uploads/tee.png",
			want: "/uploads/tee.png",
		},
		{
			name: "empty uses placeholder",
			in:   "  ",
			want: "/static/placeholder.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in, "/static/placeholder.png"))
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"", "https://imgur.com/aB3dE7q"}, "/p.png")
	assert.Equal(t, []string{"https://i.imgur.com/aB3dE7q.jpg"}, got)

	assert.Equal(t, []string{"/p.png"}, NormalizeAll(nil, "/p.png"))
}
