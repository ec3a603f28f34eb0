package storage

import "testing"

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		key    string
		want   string
	}{
		{
			name:   "public base url",
			config: Config{PublicBaseURL: "https://cdn.amparoassist.com.br/", BucketName: "amparo-media"},
			key:    "dependents/abc/1.jpg",
			want:   "https://cdn.amparoassist.com.br/dependents/abc/1.jpg",
		},
		{
			name:   "custom endpoint",
			config: Config{EndpointURL: "https://s3.sa-east-1.backblazeb2.com", BucketName: "amparo-media"},
			key:    "dependents/abc/1.jpg",
			want:   "https://s3.sa-east-1.backblazeb2.com/amparo-media/dependents/abc/1.jpg",
		},
		{
			name:   "aws default",
			config: Config{BucketName: "amparo-media", Region: "sa-east-1"},
			key:    "dependents/abc/1.jpg",
			want:   "https://amparo-media.s3.sa-east-1.amazonaws.com/dependents/abc/1.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{config: &tt.config}
			if got := c.ObjectURL(tt.key); got != tt.want {
				t.Errorf("ObjectURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
