package instructors

import (
	"github.com/bububa/instructor-gemini/instructors/gemini"
)

var FromGemini = gemini.New
