package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askDocumentTool defines the ask_document MCP tool.
var askDocumentTool = mcp.NewTool("ask_document",
	mcp.WithDescription("Answer a question using the content of a local document. The answer is grounded in the most relevant passages and refuses when the document does not cover the question."),
	mcp.WithString("file_path",
		mcp.Required(),
		mcp.Description("Path to the document (.txt, .md, or .docx)"),
	),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Natural language question to answer from the document"),
	),
	mcp.WithString("embedding_model",
		mcp.Description("Embedding model key to use for retrieval (default from config)"),
	),
	mcp.WithNumber("top_k",
		mcp.Description("Number of passages to retrieve as context (default from config)"),
	),
)

// searchDocumentTool defines the search_document MCP tool.
var searchDocumentTool = mcp.NewTool("search_document",
	mcp.WithDescription("Search a local document semantically and return the most similar passages without calling a language model."),
	mcp.WithString("file_path",
		mcp.Required(),
		mcp.Description("Path to the document (.txt, .md, or .docx)"),
	),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of passages to return (default 6)"),
	),
)

// listModelsTool defines the list_embedding_models MCP tool.
var listModelsTool = mcp.NewTool("list_embedding_models",
	mcp.WithDescription("List the embedding model keys available for retrieval."),
)
