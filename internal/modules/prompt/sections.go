package prompt

// registry lists every known section in output order.
var registry = []Section{
	{
		Key:         "titles",
		Instruction: "- Write 3 potential titles for the video, ranging from short and punchy to long and descriptive.",
		Example: `## Potential Titles

1. Title Hard
2. Title Harder
3. Title Hard with a Vengeance`,
	},
	{
		Key:         "summary",
		Instruction: "- Write a one sentence description of the transcript and a one paragraph summary.\n  - The one sentence description shouldn't exceed 180 characters (roughly 30 words).\n  - The one paragraph summary should be approximately 600-1200 characters (roughly 100-200 words).",
		Example: `## Episode Description

One sentence description of the transcript that encapsulates the content contained in the file but does not exceed roughly 180 characters (or approximately 30 words).

## Episode Summary

A concise summary of a chapter's content, typically ranging from 600 to 1200 characters or approximately 100 to 200 words. It begins with an overview of the main topic or theme, followed by the main points or arguments presented. The summary ends with how the chapter connects to the overall narrative.`,
	},
	{
		Key:         "shortSummary",
		Instruction: "- Write a one sentence description of the transcript that does not exceed 180 characters (roughly 30 words).",
		Example: `## Episode Description

One sentence description of the transcript that encapsulates the content contained in the file.`,
	},
	{
		Key:         "longSummary",
		Instruction: "- Write a comprehensive summary of the transcript in two to three paragraphs, approximately 1500-2500 characters (roughly 250-400 words).",
		Example: `## Episode Summary

A detailed overview of the transcript across two or three paragraphs. The first paragraph sets up the main topic and context, the second walks through the key arguments and examples, and the closing paragraph ties the discussion back to its larger significance.`,
	},
	{
		Key:         "bulletPoints",
		Instruction: "- Write a bullet point list of the most important topics discussed, one short sentence per bullet.",
		Example: `## Key Points

- First major topic of the episode.
- Second major topic of the episode.
- Third major topic of the episode.`,
	},
	{
		Key:         "shortChapters",
		Instruction: "- Create chapters based on the topics discussed throughout.\n  - Include timestamps for when these chapters begin.\n  - Chapters should be roughly 3-6 minutes long.\n  - Write a single sentence for each chapter that captures its main topic.",
		Example: `## Chapters

### 00:00 - Introduction and Overview

A single sentence that captures the main topic of the chapter.`,
	},
	{
		Key:         "mediumChapters",
		Instruction: "- Create chapters based on the topics discussed throughout.\n  - Include timestamps for when these chapters begin.\n  - Chapters should be roughly 3-6 minutes long.\n  - Write a paragraph of 2-3 sentences for each chapter.",
		Example: `## Chapters

### 00:00 - Introduction and Overview

A short paragraph of two to three sentences that covers the main points discussed in this chapter.`,
	},
	{
		Key:         "longChapters",
		Instruction: "- Create chapters based on the topics discussed throughout.\n  - Include timestamps for when these chapters begin.\n  - Chapters should be roughly 3-6 minutes long.\n  - Write a two paragraph description for each chapter of at least 75 words per paragraph.\n  - Ensure the chapters cover the entire content, including the end of the transcript.",
		Example: `## Chapters

### 00:00 - Introduction and Overview

A comprehensive description of the content, usually ranging from 200 to 300 words across two paragraphs. It covers the main ideas and arguments of the chapter in depth.

Both paragraphs together give a full picture of the chapter, noting examples, anecdotes and conclusions drawn by the speakers.`,
	},
	{
		Key:         "takeaways",
		Instruction: "- Write the 3 most important takeaways from the transcript, each as a single sentence.",
		Example: `## Key Takeaways

1. First important takeaway.
2. Second important takeaway.
3. Third important takeaway.`,
	},
	{
		Key:         "questions",
		Instruction: "- Write 10 questions a listener could answer after watching or listening, to check their understanding of the material.",
		Example: `## Discussion Questions

1. First question about the content.
2. Second question about the content.`,
	},
	{
		Key:         "faq",
		Instruction: "- Write 5 to 10 frequently asked questions about the topics covered, with concise answers drawn from the transcript.",
		Example: `## Frequently Asked Questions

**Q: A question a newcomer might ask?**

A: A short answer taken from the discussion.`,
	},
	{
		Key:         "blog",
		Instruction: "- Write a blog post of at least 750 words based on the transcript, with a title, an introduction, several headed sections and a conclusion.",
		Example: `## Blog Post

# Blog Post Title

Introduction paragraph.

### First Section

Section body.

### Conclusion

Closing paragraph.`,
	},
	{
		Key:         "quotes",
		Instruction: "- Select the 5 most memorable quotes from the transcript, verbatim, each with the timestamp where it appears.",
		Example: `## Notable Quotes

1. "A memorable line from the episode." (03:15)
2. "Another memorable line." (12:40)`,
	},
}
