package livereload

import (
	"strings"
	"text/template"
)

type scriptConfig struct {
	Path          string
	RetryInterval uint
	MaxRetries    uint
}

const scriptSource = `
  const socketUrl = (location.protocol === "https:" ? "wss://" : "ws://") + location.host + {{printf "%q" .Path}};
  const retryInterval = {{.RetryInterval}};
  const maxRetries = {{.MaxRetries}};
  const ws = new WebSocket(socketUrl);
  ws.onclose = () => {
    console.log("Livereload connection closed.");
    let retries = 0;
    const reload = () => {
      retries++;
      if (retries > maxRetries) {
        console.error("Could not reconnect to server.");
        return;
      }
      const next = new WebSocket(socketUrl);
      next.onerror = () => {
        setTimeout(reload, retryInterval);
      };
      next.onopen = () => {
        location.reload();
      };
    };
    setTimeout(reload, retryInterval);
  };
`

var scriptTemplate = template.Must(template.New("livereload").Parse(scriptSource))

func scriptFor(path string) (string, error) {
	var sb strings.Builder
	err := scriptTemplate.Execute(&sb, &scriptConfig{Path: path, RetryInterval: 500, MaxRetries: 20})
	return sb.String(), err
}
