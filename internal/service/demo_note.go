package service

// Seed content for the example note every new account starts with.
const (
	demoNoteTitle = "Welcome to your notes"

	demoNoteText = `# Welcome to your notes

This is your first note. Notes are written in **markdown**:

- *italic*, **bold** and ` + "`code`" + `
- lists, just like this one
- bare links become clickable: https://daringfireball.net/projects/markdown/

You can edit this note, archive it when you are done with it, or delete it.
Use the search box to find notes by title, and export any note as a PDF.`
)
