package main

const configTemplate = `# {{ index .Help "endpoint" }}
endpoint: http://localhost:8494/api/chat
# {{ index .Help "model" }}
default-model: gpt-4o-mini
# {{ index .Help "system" }}
# system-prompt: You are a concise assistant.
# {{ index .Help "cachepath" }}
# cache-path: ~/.local/share/parley
`
