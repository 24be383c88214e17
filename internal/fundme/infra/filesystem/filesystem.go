package filesystem

type (
	Reader interface {
		ReadYAML(path string, target any) error
	}
	Writer interface {
		WriteYAML(path string, data any) error
		WriteBytes(path string, data []byte) error
	}
)
