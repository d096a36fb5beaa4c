package scanning

import "fmt"

const systemPrompt = "You are a helpful assistant specialized in processing receipts. You read every line of a receipt carefully and never invent items."

// transcribePrompt asks for a plain OCR-style transcription
const transcribePrompt = `Transcribe all text on this receipt.

Rules:
- Output one receipt line per line of text, top to bottom
- Keep the quantity, description and price of an item on the same line, in that order, separated by spaces
- Write prices with a decimal point and two decimals (e.g. 12.99)
- Do not add commentary, headings or markdown`

const itemsPromptTemplate = `Extract all items and their prices from the following receipt text.
Only include items that were actually purchased, not subtotals, taxes, tips or totals.

Return ONLY valid JSON in this exact format:
{"items":[{"label":"Item name","quantity":1,"unitPrice":0.00,"totalPrice":0.00}]}

Important:
- quantity is the number of units bought; use 1 if the receipt does not say
- totalPrice is the amount charged for the line, as a number
- unitPrice is totalPrice divided by quantity, or null if unknown
- Do not include any text before or after the JSON
- Do not use markdown code blocks

Receipt text:
%s

JSON response:`

func itemsPrompt(receiptText string) string {
	return fmt.Sprintf(itemsPromptTemplate, receiptText)
}
