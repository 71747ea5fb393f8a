package wiki

import (
	"fmt"
	"strings"
)

// Messages holds the user-facing texts of a session.
type Messages struct {
	Home            string
	NotFoundTitle   string
	NotFoundBody    string
	NewPagePrompt   string
	ImageAlt        string
	Saving          string
	LoadListFailed  string
	LoadPageFailed  string
	NoPages         string
	SaveSucceeded   string
	SaveFailed      string
	SaveStatus      string
	CreateSucceeded string
	CreateStatus    string
	DeleteSucceeded string
	DeleteStatus    string
	DeleteConfirm   string
	ExportSucceeded string
	Uploading       string
	UploadSucceeded string
	UploadFailed    string
}

// English is the default message set.
var English = Messages{
	Home:            "Home",
	NotFoundTitle:   "Page Not Found",
	NotFoundBody:    "The requested page does not exist.",
	NewPagePrompt:   "Write the initial content of your new page here.",
	ImageAlt:        "Image description",
	Saving:          "Saving...",
	LoadListFailed:  "Could not load the page list.",
	LoadPageFailed:  "Could not load page %q.",
	NoPages:         "The wiki has no pages yet.",
	SaveSucceeded:   "Page saved on the server!",
	SaveFailed:      "Error while saving: %s",
	SaveStatus:      "Error while saving! Status: %d",
	CreateSucceeded: "Page %q created!",
	CreateStatus:    "Error while creating the page! Status: %d",
	DeleteSucceeded: "Page %q deleted!",
	DeleteStatus:    "Error while deleting the page! Status: %d",
	DeleteConfirm:   "Delete page %q?",
	ExportSucceeded: "Page exported!",
	Uploading:       "Uploading image...",
	UploadSucceeded: "Image inserted!",
	UploadFailed:    "Image upload failed.",
}

// Portuguese messages, as shown by the wiki web front end.
var Portuguese = Messages{
	Home:            "Home",
	NotFoundTitle:   "Página Não Encontrada",
	NotFoundBody:    "A página solicitada não existe.",
	NewPagePrompt:   "Escreva aqui o conteúdo inicial da sua nova página.",
	ImageAlt:        "Descrição da imagem",
	Saving:          "Salvando...",
	LoadListFailed:  "Não foi possível carregar a lista de páginas.",
	LoadPageFailed:  "Não foi possível carregar a página %q.",
	NoPages:         "A wiki ainda não tem páginas.",
	SaveSucceeded:   "Página salva com sucesso no servidor!",
	SaveFailed:      "Erro ao salvar: %s",
	SaveStatus:      "Erro ao salvar! Status: %d",
	CreateSucceeded: "Página %q criada com sucesso!",
	CreateStatus:    "Erro ao criar a página! Status: %d",
	DeleteSucceeded: "Página %q excluída com sucesso!",
	DeleteStatus:    "Erro ao excluir a página! Status: %d",
	DeleteConfirm:   "Excluir a página %q?",
	ExportSucceeded: "Página exportada!",
	Uploading:       "A fazer upload da imagem...",
	UploadSucceeded: "Imagem inserida com sucesso!",
	UploadFailed:    "Falha no upload da imagem.",
}

// MessagesFor returns the message set for a language tag, defaulting to English.
func MessagesFor(lang string) Messages {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "pt" || strings.HasPrefix(lang, "pt-") || strings.HasPrefix(lang, "pt_") {
		return Portuguese
	}
	return English
}

// Breadcrumb returns the trail shown above a page.
func (m Messages) Breadcrumb(title string) string {
	return m.Home + " > " + title
}

// NewPageContent returns the initial body of a freshly created page.
func (m Messages) NewPageContent(title string) string {
	return fmt.Sprintf("# %s\n\n%s", title, m.NewPagePrompt)
}

// ImageMarkdown returns the snippet inserted into a draft after an upload.
func (m Messages) ImageMarkdown(url string) string {
	return fmt.Sprintf("\n![%s](%s)\n", m.ImageAlt, url)
}
