package fetcher

type Config struct {
	// MaxTextLength caps extracted text, in characters.
	MaxTextLength int `mapstructure:"max_text_length"`

	// MaxImages caps the number of image URLs returned; 0 means no cap.
	MaxImages int `mapstructure:"max_images"`
}

func DefaultConfig() Config {
	return Config{
		MaxTextLength: 5000,
		MaxImages:     200,
	}
}
