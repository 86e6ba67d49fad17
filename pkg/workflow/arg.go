package workflow

// Arg is one slot in a job's argument vector: either a literal token or a
// reference to a File. File references are resolved to the file's name only
// at emission time, so the vector preserves its order verbatim.
type Arg struct {
	text string
	file *File
}

// Literal creates a literal token argument.
func Literal(text string) Arg {
	return Arg{text: text}
}

// Ref creates a file-reference argument.
func Ref(f File) Arg {
	return Arg{file: &f}
}

// FileRef returns the referenced file, if this slot is a file reference.
func (a Arg) FileRef() (File, bool) {
	if a.file == nil {
		return File{}, false
	}
	return *a.file, true
}

// Text returns the literal token of a non-file slot.
func (a Arg) Text() string {
	return a.text
}
