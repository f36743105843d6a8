package euph

import "fmt"

// chunkHandler extracts one core chunk type into the decode state.
type chunkHandler interface {
	CanHandle(chunkID [4]byte) bool
	Decode(st *decodeState, ch Chunk) error
}

// chunkRegistry resolves chunks to handlers. Chunks no handler claims are
// retained in the parsed chunk list but ignored by extraction, which is what
// keeps the format forward-compatible.
type chunkRegistry struct {
	handlers []chunkHandler
}

func newDefaultChunkRegistry() *chunkRegistry {
	return &chunkRegistry{
		handlers: []chunkHandler{
			&headChunkHandler{},
			&metaChunkHandler{},
			&audioChunkHandler{},
			&aideChunkHandler{},
			&dspsChunkHandler{},
			&chksChunkHandler{},
		},
	}
}

// Register appends a handler to the registry.
func (r *chunkRegistry) Register(handler chunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Decode dispatches a chunk to the first matching handler.
func (r *chunkRegistry) Decode(st *decodeState, ch Chunk) (bool, error) {
	if r == nil || st == nil {
		return false, nil
	}

	for _, handler := range r.handlers {
		if handler.CanHandle(ch.ID) {
			err := handler.Decode(st, ch)
			if err != nil {
				return true, fmt.Errorf("chunk handler decode failed: %w", err)
			}

			return true, nil
		}
	}

	return false, nil
}

// decodeState accumulates core chunk payloads during container parsing.
// Handlers only collect raw payloads; interpretation happens after the
// chunk loop so a corrupted payload can be reported through the integrity
// record instead of aborting the parse. Audio payloads keep their encounter
// order; they are concatenated before decompression.
type decodeState struct {
	headRaw  []byte
	headSeen bool
	metaRaw  []byte
	metaSeen bool
	audio    [][]byte
	aide     []byte
	aideSeen bool
	dsps     []byte
	dspsSeen bool
	chks     []byte
	chksSeen bool
}

type headChunkHandler struct{}

func (h *headChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDHead
}

func (h *headChunkHandler) Decode(st *decodeState, ch Chunk) error {
	// First HEAD wins; a duplicate would otherwise silently reconfigure
	// the audio pipeline mid-file.
	if st.headSeen {
		return nil
	}

	st.headRaw = ch.Data
	st.headSeen = true

	return nil
}

type metaChunkHandler struct{}

func (h *metaChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDMeta
}

func (h *metaChunkHandler) Decode(st *decodeState, ch Chunk) error {
	if st.metaSeen {
		return nil
	}

	st.metaRaw = ch.Data
	st.metaSeen = true

	return nil
}

type audioChunkHandler struct{}

func (h *audioChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDAudi
}

func (h *audioChunkHandler) Decode(st *decodeState, ch Chunk) error {
	st.audio = append(st.audio, ch.Data)

	return nil
}

type aideChunkHandler struct{}

func (h *aideChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDAide
}

func (h *aideChunkHandler) Decode(st *decodeState, ch Chunk) error {
	if st.aideSeen {
		return nil
	}

	st.aide = ch.Data
	st.aideSeen = true

	return nil
}

type dspsChunkHandler struct{}

func (h *dspsChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDDsps
}

func (h *dspsChunkHandler) Decode(st *decodeState, ch Chunk) error {
	if st.dspsSeen {
		return nil
	}

	st.dsps = ch.Data
	st.dspsSeen = true

	return nil
}

type chksChunkHandler struct{}

func (h *chksChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDChks
}

func (h *chksChunkHandler) Decode(st *decodeState, ch Chunk) error {
	if st.chksSeen {
		return nil
	}

	st.chks = ch.Data
	st.chksSeen = true

	return nil
}
