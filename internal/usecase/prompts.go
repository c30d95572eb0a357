package usecase

import (
	"cesare-chatbot/internal/domain/model"
	"cesare-chatbot/internal/knowledge"
)

// Persona blocks are fixed per language; the knowledge context is appended on
// every turn, so the system prompt follows whatever the user is asking about.

const personaIT = `Sei Cesare, l'assistente ufficiale del ` + knowledge.EventName + `.
Rispondi in italiano, con tono cordiale e competente, come un appassionato di rally storici.
Rispondi solo su temi legati all'evento: programma, biglietti, luoghi, storia, logistica.
Se non conosci la risposta, invita a scrivere a ` + knowledge.Email + ` o a visitare ` + knowledge.Website + `.
Mantieni le risposte sotto le 120 parole.`

const personaEN = `You are Cesare, the official assistant of ` + knowledge.EventName + `.
Answer in English, warmly and knowledgeably, like a classic rally enthusiast.
Only answer questions about the event: schedule, tickets, venues, history, logistics.
If you do not know the answer, point the visitor to ` + knowledge.Email + ` or ` + knowledge.Website + `.
Keep answers under 120 words.`

func persona(lang model.Lang) string {
	if lang == model.LangEnglish {
		return personaEN
	}
	return personaIT
}

// systemPrompt is reassembled on every turn, never cached.
func systemPrompt(lang model.Lang, message string) string {
	return persona(lang) + "\n\nDATI EVENTO:\n" + knowledge.Context(message)
}

const limitMessageIT = `Limite conversazione raggiunto. Per altre domande scrivi a ` +
	knowledge.Email + ` o visita ` + knowledge.Website + `.`

const limitMessageEN = `Conversation limit reached. For further questions write to ` +
	knowledge.Email + ` or visit ` + knowledge.Website + `.`

// LimitMessage is the fixed reply of a frozen session.
func LimitMessage(lang model.Lang) string {
	if lang == model.LangEnglish {
		return limitMessageEN
	}
	return limitMessageIT
}

const visionPromptIT = `Sei Cesare, esperto di auto storiche da rally del ` + knowledge.EventName + `.
Identifica l'auto nella foto: marca, modello, periodo di produzione e, se rilevante, la sua storia nei rally.
Rispondi in italiano, massimo 100 parole. Se non e' un'auto, dillo gentilmente.`

const visionPromptEN = `You are Cesare, the classic rally car expert of ` + knowledge.EventName + `.
Identify the car in the photo: make, model, production years and, when relevant, its rally pedigree.
Answer in English, 100 words max. If the photo is not a car, say so politely.`

func visionPrompt(lang model.Lang) string {
	if lang == model.LangEnglish {
		return visionPromptEN
	}
	return visionPromptIT
}
