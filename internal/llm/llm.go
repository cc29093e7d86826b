package llm

import "context"

// Client asks a language model to identify the third-party packages
// used by a corpus of source code. Implementations return the model's
// raw reply text; parsing is the caller's concern.
type Client interface {
	Infer(ctx context.Context, corpus string) (string, error)
}

// promptTemplate wraps the project corpus with the instruction
// contract. The model is told to answer with nothing but a
// comma-separated list of canonical PyPI names.
const promptTemplate = `You are an expert Python dependency analysis tool. Your task is to analyze the following Python code, which has been concatenated from multiple files in a project.

Your goal is to identify all third-party, pip-installable libraries that are being used.

Follow these rules STRICTLY:
1.  **ONLY list third-party packages.**
2.  **DO NOT include Python's standard library modules.** Examples to exclude: os, sys, json, datetime, re, logging, pathlib, ast, subprocess, math, collections, itertools.
3.  **DO NOT include local modules** that are part of the project itself. The file paths are provided for context.
4.  **Provide the canonical PyPI package name where possible** (e.g., 'djangorestframework' instead of 'rest_framework', 'beautifulsoup4' instead of 'bs4').
5.  **Format your output as a single, clean, comma-separated list.** Do not add any other text, explanation, or formatting.

Example of a perfect response:
django,djangorestframework,requests,beautifulsoup4,google-generativeai,python-dotenv,gunicorn

--- PROJECT CODE ---

%s
`
