// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/assistchat/internal/model"
)

var (
	codeBlockRegex  = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page with
// embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := checkDocument(conv); err != nil {
		return nil, err
	}
	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(title(conv))))
	sb.WriteString("    <meta name=\"generator\" content=\"assistchat\">\n")
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(conv))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            Exported from assistchat on %s\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(conv *model.Conversation) string {
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(title(conv))))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Assistant:</strong> %s</span>\n",
		html.EscapeString(assistantLabel(conv))))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Conversation:</strong> %s</span>\n",
		html.EscapeString(conv.ID)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n",
		len(conv.Messages)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Exported:</strong> %s</span>\n",
		e.options.now().Format(time.RFC3339)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
	return sb.String()
}

func (e *HTMLExporter) renderMessage(msg model.ChatRecord) string {
	class := strings.ToLower(string(msg.Role))
	if msg.IsOpening() {
		class = "opening"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", html.EscapeString(class)))
	if !msg.HideName {
		sb.WriteString(fmt.Sprintf("                <div class=\"message-header\"><span class=\"role-label\">%s</span></div>\n",
			html.EscapeString(roleLabel(msg))))
	}
	sb.WriteString("                <div class=\"message-content\">\n")
	if msg.MessageType == model.MessageAttachment && len(msg.Attachments) > 0 {
		sb.WriteString(formatAttachments(msg.Attachments))
	} else {
		sb.WriteString(formatContent(msg.Content))
	}
	sb.WriteString("\n                </div>\n")
	sb.WriteString("            </div>\n")
	return sb.String()
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

// formatContent escapes content and turns fenced and inline code into
// HTML. Everything else becomes paragraphs.
func formatContent(content string) string {
	content = html.EscapeString(strings.TrimSpace(content))

	content = codeBlockRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		lang, code := parts[1], parts[2]
		langLabel := ""
		if lang != "" {
			langLabel = fmt.Sprintf("<div class=\"code-lang\">%s</div>", lang)
		}
		// Newlines inside <pre> must survive paragraph splitting.
		code = strings.ReplaceAll(strings.TrimSpace(code), "\n", "&#10;")
		return fmt.Sprintf("<div class=\"code-block\">%s<pre><code class=\"language-%s\">%s</code></pre></div>",
			langLabel, lang, code)
	})
	content = inlineCodeRegex.ReplaceAllString(content, "<code class=\"inline-code\">$1</code>")

	var out []string
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if strings.HasPrefix(para, "<div class=\"code-block\">") {
			out = append(out, para)
			continue
		}
		out = append(out, "<p>"+strings.ReplaceAll(para, "\n", "<br>")+"</p>")
	}
	return strings.Join(out, "\n")
}

func formatAttachments(list []model.ChatAttachment) string {
	var sb strings.Builder
	sb.WriteString("<ul class=\"attachments\">")
	for _, a := range list {
		name := html.EscapeString(a.Filename)
		if a.URL != "" {
			sb.WriteString(fmt.Sprintf("<li><a href=\"%s\">%s</a></li>", html.EscapeString(a.URL), name))
		} else {
			sb.WriteString("<li>" + name + "</li>")
		}
	}
	sb.WriteString("</ul>")
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const css = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-muted: #565f89;
            --user-bg: #1f2335;
            --code-bg: #1a1b26;
            --accent: #7aa2f7;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-muted: #6a737d;
            --user-bg: #f6f8fa;
            --code-bg: #f6f8fa;
            --accent: #0366d6;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container { max-width: 900px; margin: 0 auto; background: var(--bg-secondary); border-radius: 12px; overflow: hidden; }
        .header { padding: 32px; background: var(--bg-tertiary); }
        .header h1 { font-size: 26px; margin-bottom: 12px; }
        .metadata { display: flex; flex-wrap: wrap; gap: 16px; font-size: 14px; color: var(--text-muted); }
        .conversation { padding: 24px 32px; }
        .message { padding: 16px 20px; margin-bottom: 16px; border-radius: 8px; }
        .user-message { background: var(--user-bg); border-left: 3px solid var(--accent); }
        .opening-message { font-style: italic; color: var(--text-muted); }
        .role-label { font-weight: 600; font-size: 14px; }
        .message-content p { margin: 8px 0; }
        .code-block { margin: 12px 0; background: var(--code-bg); border-radius: 6px; overflow-x: auto; }
        .code-lang { font-size: 12px; padding: 4px 12px; color: var(--text-muted); }
        pre { padding: 12px; font-family: "Fira Code", monospace; font-size: 14px; white-space: pre; }
        .inline-code { font-family: "Fira Code", monospace; background: var(--code-bg); padding: 1px 4px; border-radius: 3px; }
        .attachments { padding-left: 20px; }
        a { color: var(--accent); }
        .footer { padding: 16px 32px; font-size: 13px; color: var(--text-muted); }
    </style>
`
