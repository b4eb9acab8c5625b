package artifact

import "fmt"

// styleInstructions, depthInstructions and lengthInstructions are the
// building blocks of the summary prompt. Keyed by the option enums.
var styleInstructions = map[string]string{
	StyleConceptual: `Focus on high-level concepts, relationships and the big picture:
- overarching themes and main ideas
- how concepts connect to each other
- theoretical frameworks and the "why" behind them`,

	StyleMathematical: `Emphasize formulas, equations and mathematical reasoning:
- every formula and equation, in proper notation
- step-by-step problem-solving approaches
- derivations, proofs and quantitative relationships`,

	StyleBulletPoints: `Present information as concise, scannable bullet points:
- hierarchical bullets, each 1-2 lines at most
- related points grouped under topic headers
- key facts and takeaways first, minimal prose`,

	StyleDetailed: `Provide comprehensive explanations with examples:
- in-depth coverage of every concept
- multiple examples per topic
- background, practical applications and nuances`,
}

var depthInstructions = map[string]string{
	DepthBasic: `Use simple, accessible language for beginners: avoid jargon or
define it immediately, explain fundamentals from the ground up, use analogies,
assume minimal prior knowledge.`,

	DepthIntermediate: `Balance detail with clarity for students with some
background: standard terminology with brief explanations, moderate technical
depth, connect concepts to build understanding.`,

	DepthAdvanced: `Include technical details for experienced learners: use
terminology without extensive definitions, cover edge cases, nuances, complex
relationships and sophisticated applications.`,
}

var lengthInstructions = map[string]string{
	LengthShort: `Target 500-800 words. Only the most critical points, 3-5 main
topics, breadth over depth, examples only when essential.`,

	LengthMedium: `Target 1000-1500 words. All main topics with brief
explanations, 1-2 examples per major topic, include important relationships.`,

	LengthLong: `Target 2000-3000 words. Extensive coverage of all topics and
subtopics, detailed explanations with multiple examples, applications and
context.`,
}

func summaryPrompt(text string, opts SummaryOptions) string {
	return fmt.Sprintf(`You are an academic content analyst creating a study guide from a document.

Ignore completely: tables of contents, page numbers, headers and footers, exam
instructions and marks, copyright notices, acknowledgements, reference lists.

Focus exclusively on: core educational content, key definitions, theories and
frameworks, practical examples, relationships between concepts.

Style preference:
%s

Depth level:
%s

Length target:
%s

Structure the summary as markdown with these sections: a short document
overview, the main topics covered, key concepts and definitions organized by
topic, important relationships between concepts, and critical points to
remember. Bold all key terms.

Document content:
%s

Generate the study guide following all requirements above.`,
		styleInstructions[opts.Style],
		depthInstructions[opts.Depth],
		lengthInstructions[opts.Length],
		text)
}

func mindmapPrompt(text string) string {
	return fmt.Sprintf(`You are a knowledge mapper creating a hierarchical representation of a document.

Ignore tables of contents, page numbers, exam instructions, copyright and other
administrative content. Capture the main topics, key concepts, definitions and
their relationships.

Structure rules:
1. Exactly one main topic at the top (# level)
2. 3-8 major subtopics (## level)
3. 3-7 key concepts per subtopic (### level), #### for sub-concepts
4. Bullet points (-) for details and examples
5. Each node concise, at most 10 words

Document content:
%s

Generate ONLY the markdown mindmap, no preamble or explanations.`, text)
}

func flashcardsPrompt(text string, count int) string {
	return fmt.Sprintf(`You are an exam preparation specialist creating study flashcards from a document.

Ignore exam instructions, marks, tables of contents, copyright, page numbers,
acknowledgements and reference lists. Use only the educational content.

Quality rules:
1. Questions test understanding, not just recall
2. Answers are clear and complete in 2-3 sentences at most
3. Mix question types: definitions, concepts, applications, relationships
4. Answers must be factually grounded in the document

Generate %d flashcards.

Respond with a JSON array using exactly this structure:
[{"question": "Clear, specific question?", "answer": "Concise, accurate answer."}]

Document content:
%s

Generate ONLY valid JSON, no explanations or preamble.`, count, text)
}

const chatSystemInstruction = `You are a study assistant helping students understand their course material.

Guidelines:
- Answer based ONLY on the provided document context
- If the context does not contain the answer, say so clearly
- Ignore page numbers, headers, footers and formatting artifacts
- Use simple, clear language and give examples from the context when helpful`

func chatPrompt(contextText, query string) string {
	return fmt.Sprintf(`Based on the following context from the study material, answer the question.

CONTEXT:
%s

QUESTION: %s

Provide a clear, concise answer.`, contextText, query)
}
