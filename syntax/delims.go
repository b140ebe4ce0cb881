package syntax

// Delimiters configures the markup embedded in static text.
type Delimiters struct {
	VarOpen      string `toml:"varOpen"`
	VarClose     string `toml:"varClose"`
	StmtOpen     string `toml:"stmtOpen"`
	StmtClose    string `toml:"stmtClose"`
	CommentOpen  string `toml:"commentOpen"`
	CommentClose string `toml:"commentClose"`
}

// DefaultDelimiters returns @{ var }, <@ statement @> and <# comment #>.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		VarOpen:      "@{",
		VarClose:     "}",
		StmtOpen:     "<@",
		StmtClose:    "@>",
		CommentOpen:  "<#",
		CommentClose: "#>",
	}
}

// OrDefault fills every empty field from DefaultDelimiters.
func (d Delimiters) OrDefault() Delimiters {
	def := DefaultDelimiters()
	fill := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	fill(&d.VarOpen, def.VarOpen)
	fill(&d.VarClose, def.VarClose)
	fill(&d.StmtOpen, def.StmtOpen)
	fill(&d.StmtClose, def.StmtClose)
	fill(&d.CommentOpen, def.CommentOpen)
	fill(&d.CommentClose, def.CommentClose)
	return d
}
